package detection

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/hitoshi/fridgelog/internal/model"
)

const rekognitionMaxLabels = 20

// RekognitionAPI はRekognitionDetectorが使用するクライアントのメソッド集合。
type RekognitionAPI interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// RekognitionDetector はAmazon Rekognitionのラベル検出を使う検出器。
type RekognitionDetector struct {
	client        RekognitionAPI
	minConfidence float32
}

// NewRekognitionDetector はRekognitionDetectorを生成する。
// minConfidenceはパーセント単位（0〜100）で指定する。
func NewRekognitionDetector(client RekognitionAPI, minConfidence float32) *RekognitionDetector {
	return &RekognitionDetector{client: client, minConfidence: minConfidence}
}

// Detect はS3上の画像に対してラベル検出を行い、ラベル名を食材名として返す。
func (d *RekognitionDetector) Detect(ctx context.Context, img Image) ([]model.DetectedItem, error) {
	out, err := d.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image: &types.Image{
			S3Object: &types.S3Object{
				Bucket: aws.String(img.Bucket),
				Name:   aws.String(img.Key),
			},
		},
		MaxLabels:     aws.Int32(rekognitionMaxLabels),
		MinConfidence: aws.Float32(d.minConfidence),
	})
	if err != nil {
		return nil, fmt.Errorf("ラベル検出に失敗しました (key=%s): %w", img.Key, err)
	}

	seen := make(map[string]struct{}, len(out.Labels))
	items := make([]model.DetectedItem, 0, len(out.Labels))
	for _, label := range out.Labels {
		name := aws.ToString(label.Name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		items = append(items, model.DetectedItem{
			ItemName:   name,
			Confidence: roundConfidence(float64(aws.ToFloat32(label.Confidence)) / 100),
		})
	}
	return items, nil
}

var _ Detector = (*RekognitionDetector)(nil)
