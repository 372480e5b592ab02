package push

import (
	"fmt"
	"net/url"
	"strings"
)

// DSN is a parsed transport connection string, e.g.
// scheme://user@host/path?option=value. Transports read their credentials
// from it through Option and RawOption.
type DSN struct {
	Scheme  string
	User    string
	Host    string
	Path    string
	options url.Values
	raw     string
}

// ParseDSN parses a transport connection string.
func ParseDSN(raw string) (*DSN, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, NewError(KindConfiguration, "malformed dsn: %v", err)
	}
	if u.Scheme == "" {
		return nil, NewError(KindConfiguration, "dsn %q is missing a scheme", raw)
	}
	if u.Host == "" {
		return nil, NewError(KindConfiguration, "dsn %q is missing a host", raw)
	}

	dsn := &DSN{
		Scheme:  u.Scheme,
		Host:    u.Host,
		Path:    u.Path,
		options: u.Query(),
		raw:     raw,
	}
	if u.User != nil {
		dsn.User = u.User.Username()
	}
	return dsn, nil
}

// Option returns the URL-decoded query option, or "" when absent.
func (d *DSN) Option(name string) string {
	return d.options.Get(name)
}

// RawOption returns the option's value as it appears in the original string,
// without URL decoding. Private keys are carried this way: decoding would
// turn their '+' characters into spaces.
func (d *DSN) RawOption(name string) string {
	for _, sep := range []string{"?", "&"} {
		marker := sep + name + "="
		i := strings.Index(d.raw, marker)
		if i < 0 {
			continue
		}
		value := d.raw[i+len(marker):]
		if j := strings.IndexByte(value, '&'); j >= 0 {
			value = value[:j]
		}
		return value
	}
	return ""
}

// String returns the DSN without its options, safe for logging.
func (d *DSN) String() string {
	if d.User != "" {
		return fmt.Sprintf("%s://%s@%s%s", d.Scheme, d.User, d.Host, d.Path)
	}
	return fmt.Sprintf("%s://%s%s", d.Scheme, d.Host, d.Path)
}
