package analytics

import (
	"context"

	"github.com/mileusna/useragent"
)

// ClientInfo is the request context every recorded event is stamped with.
type ClientInfo struct {
	UserAgent string
	Referrer  string
	PagePath  string
}

type clientInfoKey struct{}

// WithClientInfo attaches the caller's client info to ctx.
func WithClientInfo(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, clientInfoKey{}, info)
}

// ClientInfoFrom returns the client info attached to ctx, or the zero value.
func ClientInfoFrom(ctx context.Context) ClientInfo {
	info, _ := ctx.Value(clientInfoKey{}).(ClientInfo)
	return info
}

// device holds the fields derived from a user agent string.
type device struct {
	Browser    string
	OS         string
	DeviceType string
}

func parseUserAgent(uaString string) device {
	if uaString == "" {
		return device{}
	}

	ua := useragent.Parse(uaString)
	result := device{
		Browser: ua.Name,
		OS:      ua.OS,
	}
	if result.Browser == "" {
		result.Browser = "Unknown"
	}
	if result.OS == "" {
		result.OS = "Unknown"
	}

	switch {
	case ua.Mobile:
		result.DeviceType = "mobile"
	case ua.Tablet:
		result.DeviceType = "tablet"
	case ua.Bot:
		result.DeviceType = "bot"
	default:
		result.DeviceType = "desktop"
	}
	return result
}
