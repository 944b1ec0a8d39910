package s3_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"roombook/config"
	"roombook/infras/otel/mocks"
	"roombook/infras/s3"
)

func newStorage(publicDomain string) s3.S3 {
	cfg := &config.Config{}
	cfg.External.S3.APIEndpoint = "https://storage.example.com"
	cfg.External.S3.BucketName = "roombook"
	cfg.External.S3.PublicDomain = publicDomain
	cfg.External.S3.Region = "auto"

	return s3.New(cfg, mocks.NewOtel())
}

func TestS3_KeyFromURL(t *testing.T) {
	tests := []struct {
		name   string
		public string
		url    string
		want   string
	}{
		{name: "public domain", public: "https://cdn.example.com/", url: "https://cdn.example.com/calendars/b-1.ics", want: "calendars/b-1.ics"},
		{name: "api endpoint", public: "https://cdn.example.com", url: "https://storage.example.com/roombook/calendars/b-1.ics", want: "calendars/b-1.ics"},
		{name: "no public domain configured", url: "/calendars/b-1.ics"},
		{name: "foreign url", public: "https://cdn.example.com", url: "https://elsewhere.example.com/calendars/b-1.ics"},
		{name: "bare prefix", public: "https://cdn.example.com", url: "https://cdn.example.com/"},
		{name: "empty", public: "https://cdn.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newStorage(tt.public).KeyFromURL(tt.url))
		})
	}
}

func TestS3_PutEmptyFile(t *testing.T) {
	recorder := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.External.S3.BucketName = "roombook"
	cfg.External.S3.Region = "auto"

	_, err := s3.New(cfg, recorder).Put(context.Background(), "calendars/b-1.ics", "text/calendar", nil)

	assert.ErrorIs(t, err, s3.ErrEmptyFile)

	spans := recorder.Spans()
	if assert.Len(t, spans, 1) {
		assert.Equal(t, "calendars/b-1.ics", spans[0].Attributes["object_key"])
		assert.Len(t, spans[0].Errors, 1)
	}
}
