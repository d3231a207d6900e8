package s3

import (
	"context"
	"io/ioutil"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	puts map[string]string
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	b, err := ioutil.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts[aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key)] = string(b)
	return &s3.PutObjectOutput{}, nil
}

func TestPutUsesPrefix(t *testing.T) {
	api := &fakeS3{puts: make(map[string]string)}
	c := NewClientWithAPI(AwsS3Bucket{Name: "bkt", Prefix: "raw/genie/"}, api)
	require.NoError(t, c.Put(context.Background(), "/run1/spaces/page-000001.json", []byte(`{}`), "application/json"))
	require.Equal(t, `{}`, api.puts["bkt/raw/genie/run1/spaces/page-000001.json"])
	c = NewClientWithAPI(AwsS3Bucket{Name: "bkt"}, api)
	require.NoError(t, c.Put(context.Background(), "k.json", []byte(`[]`), ""))
	require.Contains(t, api.puts, "bkt/k.json")
}

func TestParseDSN(t *testing.T) {
	b, err := ParseDSN("s3://bkt/raw/genie/", "eu-west-1")
	require.NoError(t, err)
	require.Equal(t, AwsS3Bucket{Name: "bkt", Prefix: "raw/genie", Region: "eu-west-1"}, b)
	require.Equal(t, "s3://bkt/raw/genie", b.String())
	require.NoError(t, b.Parse())
	b, err = ParseDSN("bkt", "eu-west-1")
	require.NoError(t, err)
	require.Equal(t, "s3://bkt", b.String())
	_, err = ParseDSN("gs://bkt/x", "eu-west-1")
	require.Error(t, err)
	_, err = ParseDSN("s3://bkt/x", "")
	require.Error(t, err)
	_, err = ParseDSN("s3:///x", "eu-west-1")
	require.Error(t, err)
}
