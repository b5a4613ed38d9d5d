package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config はS3Storeの接続設定。
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string // S3互換ストレージ用。空の場合はAWSのエンドポイントを使う
	AccessKeyID     string // 空の場合はデフォルトの認証情報チェーンを使う
	SecretAccessKey string
	PublicBaseURL   string // 空の場合は https://<bucket>.s3.amazonaws.com
}

// S3API はS3Storeが使用するS3クライアントのメソッド集合。
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// Presigner はGetObjectの署名付きURLを発行する。
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Store はAWS S3（またはS3互換ストレージ）を使用したStore実装。
type S3Store struct {
	client        S3API
	presigner     Presigner
	bucket        string
	publicBaseURL string
}

// LoadAWSConfig はS3Configからaws.Configを構築する。
// アクセスキーが指定された場合は静的認証情報を使う。
func LoadAWSConfig(ctx context.Context, region, accessKeyID, secretAccessKey string) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("AWS設定の読み込みに失敗しました: %w", err)
	}
	return cfg, nil
}

// NewS3Store はS3Storeを生成する。
func NewS3Store(awsCfg aws.Config, cfg S3Config) *S3Store {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Store(client, s3.NewPresignClient(client), cfg)
}

func newS3Store(client S3API, presigner Presigner, cfg S3Config) *S3Store {
	base := cfg.PublicBaseURL
	if base == "" {
		if cfg.Endpoint != "" {
			base = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			base = fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.Bucket)
		}
	}

	return &S3Store{
		client:        client,
		presigner:     presigner,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(base, "/"),
	}
}

// Bucket はバケット名を返す。
func (s *S3Store) Bucket() string {
	return s.bucket
}

// Put はオブジェクトを書き込む。
func (s *S3Store) Put(ctx context.Context, key string, body []byte, opts PutOptions) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if opts.PublicRead {
		input.ACL = s3types.ObjectCannedACLPublicRead
	}
	if len(opts.Metadata) > 0 {
		input.Metadata = opts.Metadata
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("オブジェクトの書き込みに失敗しました (key=%s): %w", key, err)
	}
	return nil
}

// Get はオブジェクトを読み込む。存在しない場合はErrNotFoundを返す。
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("オブジェクトの読み込みに失敗しました (key=%s): %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("オブジェクト本文の読み取りに失敗しました (key=%s): %w", key, err)
	}
	return data, nil
}

// isNotFound はGetObjectのエラーがオブジェクト不在を表すかを返す。
// NoSuchKeyとしてデコードされない404（HEAD相当の応答やS3互換ストレージ）も不在として扱う。
// s3:ListBucket権限がない場合、S3は不在キーに403を返すため不在とは判別できない。
func isNotFound(err error) bool {
	var noSuchKey *s3types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var respErr interface{ HTTPStatusCode() int }
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}

// List はプレフィックスに一致する全オブジェクトをページングしながら返す。
func (s *S3Store) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	var objects []ObjectInfo
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("オブジェクト一覧の取得に失敗しました (prefix=%s): %w", prefix, err)
		}
		for _, obj := range page.Contents {
			info := ObjectInfo{
				Key:  aws.ToString(obj.Key),
				Size: aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			objects = append(objects, info)
		}
	}
	return objects, nil
}

// Delete はオブジェクトを削除する。S3は存在しないキーの削除も成功扱いにする。
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("オブジェクトの削除に失敗しました (key=%s): %w", key, err)
	}
	return nil
}

// PresignGet は期限付きの読み取り用署名付きURLを発行する。
func (s *S3Store) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("署名付きURLの発行に失敗しました (key=%s): %w", key, err)
	}
	return req.URL, nil
}

// PublicURL は公開読み取りオブジェクトのURLを返す。
func (s *S3Store) PublicURL(key string) string {
	return s.publicBaseURL + "/" + key
}

// compile-time interface check
var _ Store = (*S3Store)(nil)
