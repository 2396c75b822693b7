package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"asrama/internal/domain"
	"asrama/internal/pkg/i18n"
)

const (
	IPAddressContextKey = "ip_address"
	UserAgentContextKey = "user_agent"
	LocaleContextKey    = "locale"
)

// RequestInfo records the client address, user agent and preferred locale.
// The address honours Cloudflare and proxy headers.
func RequestInfo() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(IPAddressContextKey, clientIP(c))
		c.Locals(UserAgentContextKey, c.Get(fiber.HeaderUserAgent))
		c.Locals(LocaleContextKey, i18n.Resolve(c.Get(fiber.HeaderAcceptLanguage)))
		return c.Next()
	}
}

func clientIP(c *fiber.Ctx) string {
	if ip := c.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if fwd := c.Get(fiber.HeaderXForwardedFor); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if ip := c.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return c.IP()
}

func GetIPAddress(c *fiber.Ctx) string {
	if ip, ok := c.Locals(IPAddressContextKey).(string); ok {
		return ip
	}
	return c.IP()
}

func GetUserAgent(c *fiber.Ctx) string {
	if ua, ok := c.Locals(UserAgentContextKey).(string); ok {
		return ua
	}
	return c.Get(fiber.HeaderUserAgent)
}

func GetLocale(c *fiber.Ctx) string {
	if locale, ok := c.Locals(LocaleContextKey).(string); ok {
		return locale
	}
	return i18n.Resolve(c.Get(fiber.HeaderAcceptLanguage))
}

func RequestMeta(c *fiber.Ctx) *domain.RequestMeta {
	return &domain.RequestMeta{
		IPAddress: GetIPAddress(c),
		UserAgent: GetUserAgent(c),
	}
}
