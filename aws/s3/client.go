package s3

import (
	"bytes"
	"context"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
)

// NewClient returns a Putter for the bucket using the default AWS credential chain.
func NewClient(b AwsS3Bucket) (*Client, error) {
	awsConfig := aws.NewConfig().WithRegion(b.Region)
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create AWS session")
	}
	return NewClientWithAPI(b, s3.New(sess)), nil
}

// NewClientWithAPI returns a Client that uses api for all S3 calls.
func NewClientWithAPI(b AwsS3Bucket, api s3iface.S3API) *Client {
	return &Client{bucket: b.Name, prefix: b.Prefix, api: api}
}

// Client puts objects under the prefix of a bucket.
type Client struct {
	bucket string
	prefix string
	api    s3iface.S3API
}

func (s *Client) Put(ctx context.Context, key string, data []byte, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.getKeyWithPrefix(key)),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.api.PutObjectWithContext(ctx, in); err != nil {
		return errors.Wrapf(err, "unable to put s3://%v/%v", s.bucket, s.getKeyWithPrefix(key))
	}
	return nil
}

func (s *Client) getKeyWithPrefix(key string) string {
	if s.prefix != "" {
		return strings.TrimRight(s.prefix, "/") + "/" + strings.TrimLeft(key, "/") // ensure one slash after the prefix.
	}
	return key
}
