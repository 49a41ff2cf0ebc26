// Package rajaongkir adapts a RajaOngkir-style rate provider into the
// shipping.RateClient port.
package rajaongkir

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/shipping"
)

// maxResponseBytes bounds how much of a provider response is read.
const maxResponseBytes = 1 << 20

var _ shipping.RateClient = (*Client)(nil)

// Config holds the provider endpoint and credentials.
type Config struct {
	// BaseURL of the provider API, e.g. https://api.rajaongkir.com/starter.
	BaseURL string
	// APIKey is sent as the "key" request header.
	APIKey string
}

// Client is an HTTP client for the provider's cost endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a Client. Per-call deadlines come from the caller's
// context; the transport itself has no timeout.
func NewClient(cfg Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}
}

// Quote requests rates for one courier. It returns an error for transport
// failures, non-2xx statuses, and unparseable payloads; an answer with no
// usable cost entries is an empty slice, not an error.
func (c *Client) Quote(ctx context.Context, origin, destination string, weightGrams int, courier string) ([]shipping.Quote, error) {
	form := url.Values{
		"origin":      {origin},
		"destination": {destination},
		"weight":      {strconv.Itoa(weightGrams)},
		"courier":     {courier},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cost", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "build rate request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "rate request [%s]", courier)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("rate provider [%s] returned status %d", courier, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrapf(err, "read rate response [%s]", courier)
	}

	quotes, err := parseCostResponse(body, courier)
	if err != nil {
		return nil, errors.Wrapf(err, "parse rate response [%s]", courier)
	}
	return quotes, nil
}

// rateService is one named service tier inside a provider result.
type rateService struct {
	name  string
	cost  decimal.Decimal
	etd   string
	valid bool
}

// parseCostResponse walks the nested provider payload
// {rajaongkir:{results:[{code,costs:[{service,cost:[{value,etd}]}]}]}}.
// Unknown keys are skipped and incomplete entries are dropped, so a partially
// malformed answer degrades to fewer quotes instead of an error.
func parseCostResponse(data []byte, courier string) ([]shipping.Quote, error) {
	quotes := []shipping.Quote{}

	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "rajaongkir" {
			return d.Skip()
		}
		return d.Obj(func(d *jx.Decoder, key string) error {
			if key != "results" {
				return d.Skip()
			}
			return d.Arr(func(d *jx.Decoder) error {
				return parseResult(d, courier, &quotes)
			})
		})
	})
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

// parseResult reads one carrier result object and appends its service tiers.
// The label is namespaced with the result's own carrier code so identically
// named tiers from different carriers never collide.
func parseResult(d *jx.Decoder, courier string, out *[]shipping.Quote) error {
	var (
		code     string
		services []rateService
	)

	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "code":
			v, err := d.Str()
			if err != nil {
				return err
			}
			code = v
			return nil
		case "costs":
			return d.Arr(func(d *jx.Decoder) error {
				svc, err := parseService(d)
				if err != nil {
					return err
				}
				services = append(services, svc)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return err
	}

	for _, svc := range services {
		if !svc.valid || svc.name == "" {
			continue
		}
		*out = append(*out, shipping.Quote{
			Courier: courier,
			Service: strings.ToUpper(code) + " - " + svc.name,
			Cost:    svc.cost,
			ETD:     svc.etd,
		})
	}
	return nil
}

// parseService reads one {service, cost:[{value, etd}]} entry, keeping only
// the first cost element like the provider documents.
func parseService(d *jx.Decoder) (rateService, error) {
	var svc rateService

	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "service":
			v, err := d.Str()
			if err != nil {
				return err
			}
			svc.name = v
			return nil
		case "cost":
			first := true
			return d.Arr(func(d *jx.Decoder) error {
				if !first {
					return d.Skip()
				}
				first = false
				return d.Obj(func(d *jx.Decoder, key string) error {
					switch key {
					case "value":
						n, err := d.Num()
						if err != nil {
							return err
						}
						v, err := decimal.NewFromString(n.String())
						if err != nil {
							return err
						}
						if v.IsNegative() {
							// Negative costs are provider garbage.
							return nil
						}
						svc.cost = v
						svc.valid = true
						return nil
					case "etd":
						etd, err := readStringOrNumber(d)
						if err != nil {
							return err
						}
						svc.etd = etd
						return nil
					default:
						return d.Skip()
					}
				})
			})
		default:
			return d.Skip()
		}
	})
	return svc, err
}

// readStringOrNumber tolerates providers that send etd as either "2-3" or 2.
func readStringOrNumber(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.String:
		return d.Str()
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return "", err
		}
		return n.String(), nil
	default:
		return "", d.Skip()
	}
}
