package app

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandWorker は整理ワーカーモードで起動することを示す。
	CommandWorker Command = "worker"
	// CommandMigrate はデータベースマイグレーションを実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"

	// Lambdaランタイムで起動するハンドラー
	CommandLambdaIngest   Command = "lambda-ingest"
	CommandLambdaFollow   Command = "lambda-follow"
	CommandLambdaProfile  Command = "lambda-profile"
	CommandLambdaResolver Command = "lambda-resolver"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch cmd := Command(args[0]); cmd {
	case CommandServe, CommandWorker, CommandMigrate, CommandHealthcheck,
		CommandLambdaIngest, CommandLambdaFollow, CommandLambdaProfile, CommandLambdaResolver:
		return cmd
	default:
		return CommandServe
	}
}

// IsLambda はLambdaランタイムで起動するコマンドかどうかを返す。
func (c Command) IsLambda() bool {
	switch c {
	case CommandLambdaIngest, CommandLambdaFollow, CommandLambdaProfile, CommandLambdaResolver:
		return true
	}
	return false
}
