package tools

import (
	"strconv"

	"github.com/spf13/cast"

	"github.com/wagiedev/msf-mcp-go/internal/errors"
	"github.com/wagiedev/msf-mcp-go/internal/msf"
)

// listenerOptions carries the named datastore fields shared by the
// exploit and payload tools.
type listenerOptions struct {
	RHosts  string
	Payload string
	LHost   string
	LPort   int
}

// buildOptions assembles the module datastore from named fields and the
// additional_options blob. Blob keys override named fields. The blob is
// parsed before anything else so a bad blob fails without side effects.
// Host keys in the blob are validated like their named counterparts.
func buildOptions(named listenerOptions, additional string) (msf.ModuleOptions, error) {
	extra, err := msf.ParseOptionsJSON(additional)
	if err != nil {
		return nil, err
	}

	if err := validateOverrides(extra); err != nil {
		return nil, err
	}

	opts := msf.ModuleOptions{}
	if named.RHosts != "" {
		opts["RHOSTS"] = named.RHosts
	}

	if named.Payload != "" {
		opts["PAYLOAD"] = named.Payload
	}

	if named.LHost != "" {
		opts["LHOST"] = named.LHost
	}

	if named.LPort != 0 {
		opts["LPORT"] = strconv.Itoa(named.LPort)
	}

	return opts.Merge(extra), nil
}

// validateOverrides checks the RHOSTS and LHOST values of an override blob.
func validateOverrides(extra msf.ModuleOptions) error {
	if v, ok := extra["RHOSTS"]; ok {
		hosts, err := cast.ToStringE(v)
		if err != nil {
			return &errors.ValidationError{Field: "RHOSTS", Err: err}
		}

		if err := validateHosts("RHOSTS", hosts); err != nil {
			return err
		}
	}

	if v, ok := extra["LHOST"]; ok {
		host, err := cast.ToStringE(v)
		if err != nil {
			return &errors.ValidationError{Field: "LHOST", Err: err}
		}

		return validateHost("LHOST", host)
	}

	return nil
}
