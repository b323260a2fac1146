// Package geo resolves street addresses through the Geo gRPC service.
package geo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"courier-dispatch/internal/core/domain/model/kernel"
	"courier-dispatch/internal/pkg/errs"
	"courier-dispatch/internal/pkg/resilience"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

const getGeolocationMethod = "/geo.Geo/GetGeolocation"

var (
	ErrStreetIsUnknown   = errs.NewValidationError("street.is.unknown", "street is not known to the geo service")
	ErrLocationIsInvalid = errs.NewValidationError("geo.location.is.invalid", "geo service returned a location outside the grid")
	ErrGeoIsUnavailable  = errs.NewUnavailableError("geo.is.unavailable", "geo service is unavailable")
)

type Config struct {
	Target string
	// Timeout bounds one GetLocation call, retries included.
	Timeout time.Duration

	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

func DefaultConfig(target string) Config {
	return Config{
		Target:            target,
		Timeout:           10 * time.Second,
		MaxAttempts:       5,
		InitialBackoff:    time.Second,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// serviceConfig retries UNAVAILABLE responses of every geo.Geo method.
func (c Config) serviceConfig() string {
	return fmt.Sprintf(`{"methodConfig":[{"name":[{"service":"geo.Geo"}],"retryPolicy":{`+
		`"maxAttempts":%d,"initialBackoff":"%.3fs","maxBackoff":"%.3fs",`+
		`"backoffMultiplier":%g,"retryableStatusCodes":["UNAVAILABLE"]}}]}`,
		c.MaxAttempts, c.InitialBackoff.Seconds(), c.MaxBackoff.Seconds(), c.BackoffMultiplier)
}

// Client implements ports.GeoClient.
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
	breaker *resilience.Breaker
	logger  *slog.Logger
}

// NewClient does not connect; the connection is made by the first call.
// opts are appended to the defaults, so tests can replace the dialer.
func NewClient(cfg Config, breaker *resilience.Breaker, logger *slog.Logger, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultServiceConfig(cfg.serviceConfig()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(wireCodec{})),
	}, opts...)

	conn, err := grpc.NewClient(cfg.Target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("geo client for %s: %w", cfg.Target, err)
	}
	return &Client{
		conn:    conn,
		timeout: cfg.Timeout,
		breaker: breaker,
		logger:  logger.With("component", "geo_client", "target", cfg.Target),
	}, nil
}

func (c *Client) GetLocation(ctx context.Context, street string) (kernel.Location, error) {
	var reply getGeolocationReply
	call := func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return c.conn.Invoke(callCtx, getGeolocationMethod, &getGeolocationRequest{Street: street}, &reply)
	}

	var err error
	if c.breaker != nil {
		err = c.breaker.Execute(call)
	} else {
		err = call()
	}
	if err != nil {
		err = classify(err, street)
		c.logger.WarnContext(ctx, "geolocation failed", "street", street, "error", err)
		return kernel.Location{}, err
	}

	if !reply.HasLocation {
		return kernel.Location{}, ErrLocationIsInvalid.WithMessage("no location for %q", street)
	}
	location, err := toLocation(reply.X, reply.Y)
	if err != nil {
		return kernel.Location{}, ErrLocationIsInvalid.WithMessage("location (%d, %d) for %q: %v", reply.X, reply.Y, street, err)
	}
	return location, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// IsFailure reports whether err should count against the circuit breaker.
// Answers about the request itself mean the service is healthy.
func IsFailure(err error) bool {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.NotFound, codes.Canceled:
		return false
	default:
		return true
	}
}

func classify(err error, street string) error {
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return err
	}
	switch status.Code(err) {
	case codes.InvalidArgument, codes.NotFound:
		return ErrStreetIsUnknown.WithMessage("street %q: %s", street, status.Convert(err).Message())
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return ErrGeoIsUnavailable.WithMessage("geolocate %q: %s", street, status.Convert(err).Message())
	default:
		return fmt.Errorf("geolocate %q: %w", street, err)
	}
}

func toLocation(x, y int32) (kernel.Location, error) {
	if x < int32(kernel.LocationMinX) || x > int32(kernel.LocationMaxX) ||
		y < int32(kernel.LocationMinY) || y > int32(kernel.LocationMaxY) {
		return kernel.Location{}, errs.NewValueIsOutOfRangeError("location", fmt.Sprintf("(%d, %d)", x, y),
			kernel.MinLocation().String(), kernel.MaxLocation().String())
	}
	return kernel.NewLocation(kernel.Coordinate(x), kernel.Coordinate(y))
}
