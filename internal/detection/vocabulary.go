// Package detection は冷蔵庫画像から食材を検出する。
package detection

// vocabulary はランダム検出で使用する食材名の一覧。
var vocabulary = []string{
	"Tomato", "Potato", "Onion", "Garlic", "Carrot", "Bell Pepper", "Broccoli", "Cauliflower",
	"Spinach", "Kale", "Cabbage", "Celery", "Cucumber", "Zucchini", "Eggplant", "Mushroom",
	"Green Bean", "Peas", "Corn", "Lettuce", "Arugula", "Basil", "Parsley", "Cilantro", "Dill",
	"Rosemary", "Thyme", "Oregano", "Sage", "Mint", "Chives", "Lemon", "Lime", "Orange", "Apple",
	"Banana", "Strawberry", "Blueberry", "Raspberry", "Blackberry", "Pineapple", "Mango", "Peach",
	"Grape", "Watermelon", "Cantaloupe", "Honeydew", "Kiwi", "Avocado", "Ginger", "Turmeric",
	"Chili Pepper", "Jalapeno", "Habanero", "Paprika", "Cumin", "Coriander", "Cardamom", "Nutmeg",
	"Clove", "Cinnamon", "Allspice", "Bay Leaf", "Mustard Seed", "Fennel", "Sesame Seed",
	"Poppy Seed", "Pumpkin", "Squash", "Butternut Squash", "Acorn Squash", "Sweet Potato", "Yam",
	"Beetroot", "Radish", "Turnip", "Parsnip", "Brussels Sprouts", "Asparagus", "Artichoke", "Okra",
	"Leek", "Scallion", "Shallot", "Bean Sprout", "Bok Choy", "Watercress", "Endive",
	"Fennel (vegetable)", "Quinoa", "Rice", "Oats", "Barley", "Millet", "Rye", "Spelt", "Wheat",
	"Cornmeal", "Pasta", "Bread", "Naan", "Pita", "Baguette", "Croissant", "Bagel", "Muffin", "Donut",
	"Cookie", "Cake", "Brownie", "Pie", "Tart", "Scone", "Biscuit", "Cereal", "Granola", "Yogurt",
	"Cheese", "Milk", "Butter", "Cream", "Sour Cream", "Ice Cream", "Custard", "Egg", "Tofu",
	"Tempeh", "Seitan", "Chicken", "Beef", "Pork", "Lamb", "Turkey", "Duck", "Goose", "Fish",
	"Salmon", "Tuna", "Shrimp", "Crab", "Lobster", "Oyster", "Clam", "Mussel", "Scallop", "Squid",
	"Octopus", "Almond", "Walnut", "Pecan", "Hazelnut", "Cashew", "Peanut", "Pistachio", "Macadamia",
	"Brazil Nut", "Chestnut", "Sunflower Seed", "Pumpkin Seed", "Flaxseed", "Chia Seed", "Sesame",
	"Soybean", "Lentil", "Chickpea", "Black Bean", "Kidney Bean", "Pinto Bean", "Navy Bean",
	"Cranberry Bean", "Fava Bean", "Mung Bean", "Edamame", "Spice Mix", "Herb Mix", "Bouillon",
	"Vinegar", "Olive Oil", "Canola Oil", "Sunflower Oil", "Coconut Oil", "Sesame Oil", "Peanut Oil",
	"Grapeseed Oil", "Wine", "Beer", "Champagne", "Vodka", "Whiskey", "Rum", "Tequila", "Gin",
	"Brandy", "Sake", "Cocoa", "Coffee", "Tea", "Water", "Soda", "Juice",
}

// Vocabulary は検出対象となる食材名の一覧のコピーを返す。
func Vocabulary() []string {
	out := make([]string, len(vocabulary))
	copy(out, vocabulary)
	return out
}
