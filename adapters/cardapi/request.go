package cardapi

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/goliatone/go-contract-card/contract"
)

// DefaultMaxBodyBytes bounds uploaded record payloads.
const DefaultMaxBodyBytes int64 = 1 << 20

// Request provides minimal request access for transport adapters.
type Request interface {
	Context() context.Context
	Method() string
	Path() string
	Header(name string) string
	Query(name string) string
	Body() io.ReadCloser
}

// RecordDecoder parses a request body into a contract record.
type RecordDecoder interface {
	Decode(req Request) (contract.Record, error)
}

// JSONRecordDecoder decodes a JSON contract record.
type JSONRecordDecoder struct {
	MaxBodyBytes int64
}

// Decode rejects unknown fields, unknown statuses and trailing data.
func (d JSONRecordDecoder) Decode(req Request) (contract.Record, error) {
	if req == nil {
		return contract.Record{}, contract.NewError(contract.KindInternal, "request is nil", nil)
	}
	body := req.Body()
	if body == nil {
		return contract.Record{}, contract.NewError(contract.KindValidation, "request body is required", nil)
	}
	defer body.Close()

	limit := d.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return contract.Record{}, contract.NewError(contract.KindValidation, "read request body", err)
	}
	if int64(len(data)) > limit {
		return contract.Record{}, contract.NewError(contract.KindValidation, "request body too large", nil)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return contract.Record{}, contract.NewError(contract.KindValidation, "request body is required", nil)
	}

	var record contract.Record
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&record); err != nil {
		return contract.Record{}, contract.NewError(contract.KindValidation, "invalid contract payload", err)
	}
	if decoder.More() {
		return contract.Record{}, contract.NewError(contract.KindValidation, "unexpected data after contract payload", nil)
	}
	if err := record.Validate(); err != nil {
		return contract.Record{}, err
	}
	return record, nil
}

// cardOptionsFromRequest applies query overrides to base.
func cardOptionsFromRequest(req Request, base contract.CardOptions) contract.CardOptions {
	opts := base
	if class := strings.TrimSpace(req.Query("class")); class != "" {
		opts.ClassName = class
	}
	if raw := req.Query("clickable"); raw != "" {
		if clickable, err := strconv.ParseBool(raw); err == nil {
			opts.Clickable = clickable
		}
	}
	if locale := strings.TrimSpace(req.Query("locale")); locale != "" {
		opts.Format.Locale = locale
	}
	if tz := strings.TrimSpace(req.Query("timezone")); tz != "" {
		opts.Format.Timezone = tz
	}
	return opts
}
