package snsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type SNSClient struct {
	endpoint  string
	accessKey string
	secretKey string

	Client *sns.Client
}

// New builds an SNS client. Without static keys the default AWS credential chain is used.
func New(ctx context.Context, region string, opts ...Option) (*SNSClient, error) {
	c := &SNSClient{}

	for _, opt := range opts {
		opt(c)
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if c.accessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.accessKey, c.secretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("SNSClient - New - config.LoadDefaultConfig: %w", err)
	}

	c.Client = sns.NewFromConfig(cfg, func(o *sns.Options) {
		if c.endpoint != "" {
			o.BaseEndpoint = aws.String(c.endpoint)
		}
	})

	return c, nil
}
