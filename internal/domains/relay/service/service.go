package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"roombook/config"
	"roombook/infras/otel"
	"roombook/internal/domains/relay/model/dto"
	"roombook/shared/constant"
	"roombook/shared/failure"

	"github.com/rs/zerolog/log"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultMaxBodyBytes = 1 << 20

	errUpstream = "Internal server error"
)

var ErrResponseTooLarge = errors.New("upstream response exceeds the relay limit")

// Relay forwards requests server side for browsers that cannot reach the upstream
// directly because of CORS.
type Relay interface {
	Forward(ctx context.Context, req dto.RelayRequest) (dto.RelayResponse, error)
}

type serviceImpl struct {
	client       *http.Client
	otel         otel.Otel
	allowedHosts []string
	timeout      time.Duration
	maxBodyBytes int64
}

func New(cfg *config.Config, otel otel.Otel) Relay {
	return NewWithClient(cfg, &http.Client{}, otel)
}

func NewWithClient(cfg *config.Config, client *http.Client, otel otel.Otel) Relay {
	timeout := time.Duration(cfg.Relay.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	maxBodyBytes := cfg.Relay.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}

	hosts := make([]string, 0, len(cfg.Relay.AllowedHosts))
	for _, host := range cfg.Relay.AllowedHosts {
		if host = strings.ToLower(strings.TrimSpace(host)); host != constant.Empty {
			hosts = append(hosts, host)
		}
	}

	if len(hosts) == 0 {
		log.Warn().Msg("relay has no allowed hosts configured, every host is reachable")
	}

	return &serviceImpl{
		client:       client,
		otel:         otel,
		allowedHosts: hosts,
		timeout:      timeout,
		maxBodyBytes: maxBodyBytes,
	}
}

func (s *serviceImpl) Forward(ctx context.Context, req dto.RelayRequest) (res dto.RelayResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelRelayScopeName, constant.OtelRelayScopeName+".Forward")
	defer scope.End()
	defer scope.TraceIfError(err)

	if strings.TrimSpace(req.URL) == constant.Empty {
		return res, failure.BadRequestFromString("url is required")
	}

	target, err := url.Parse(req.URL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == constant.Empty {
		return res, failure.BadRequestFromString("url must be a valid http or https URL")
	}

	if !s.allowed(target.Hostname()) {
		return res, failure.Forbidden("url host is not allowed")
	}

	scope.SetAttributes(map[string]any{
		"relay.host":   target.Host,
		"relay.method": req.HTTPMethod(),
	})

	body, err := req.Encode()
	if err != nil {
		return res, failure.BadRequest(err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	upstream, err := http.NewRequestWithContext(ctx, req.HTTPMethod(), target.String(), body)
	if err != nil {
		return res, failure.BadRequest(fmt.Errorf("failed to build relay request: %w", err))
	}

	upstream.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeFormURLEncoded)

	for key, value := range req.Headers {
		upstream.Header.Set(key, value)
	}

	response, err := s.client.Do(upstream)
	if err != nil {
		log.Error().Err(err).Str("host", target.Host).Msg("failed to reach relay upstream")

		return res, failure.Wrap(http.StatusInternalServerError, errUpstream, err)
	}
	defer response.Body.Close()

	content, err := io.ReadAll(io.LimitReader(response.Body, s.maxBodyBytes+1))
	if err != nil {
		log.Error().Err(err).Str("host", target.Host).Msg("failed to read relay upstream response")

		return res, failure.Wrap(http.StatusInternalServerError, errUpstream, err)
	}

	if int64(len(content)) > s.maxBodyBytes {
		log.Error().Err(ErrResponseTooLarge).Str("host", target.Host).Int64("limit", s.maxBodyBytes).Msg("relay upstream response too large")

		return res, failure.Wrap(http.StatusInternalServerError, errUpstream, ErrResponseTooLarge)
	}

	log.Info().Str("host", target.Host).Int("status", response.StatusCode).Msg("relayed request")

	return dto.RelayResponse{
		StatusCode:  response.StatusCode,
		ContentType: response.Header.Get(constant.RequestHeaderContentType),
		Body:        content,
	}, nil
}

func (s *serviceImpl) allowed(host string) bool {
	if len(s.allowedHosts) == 0 {
		return true
	}

	return slices.Contains(s.allowedHosts, strings.ToLower(host))
}
