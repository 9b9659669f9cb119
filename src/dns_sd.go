package wsprcodex

/*------------------------------------------------------------------
 *
 * Purpose:   	Announce the codec HTTP service using DNS-SD
 *
 * Description:
 *
 *     So that a phone or another station's logging program on the
 *     same network can find the service without being told an
 *     address and port.
 *
 *     This uses the pure-Go github.com/brutella/dnssd package, no
 *     system daemon needed.
 */

import (
	"context"
	"os"
	"strings"

	"github.com/brutella/dnssd"
)

const DNS_SD_SERVICE = "_wsprcodex._tcp"

/* Get a default service name to publish: "wsprcodex on <hostname>",
 * or just "wsprcodex" if the hostname cannot be obtained.
 */
func dnsSDDefaultServiceName() string {
	var hostname, hostnameErr = os.Hostname()
	if hostnameErr != nil {
		return "wsprcodex"
	}

	// on some systems, an FQDN is returned; remove domain part
	hostname, _, _ = strings.Cut(hostname, ".")

	return "wsprcodex on " + hostname
}

// dnsSDAnnounce runs until ctx is done.  Failures are logged, not fatal: the service
// works fine without being discoverable.
func dnsSDAnnounce(ctx context.Context, name string, port int) {
	if name == "" {
		name = dnsSDDefaultServiceName()
	}

	var cfg = dnssd.Config{ //nolint:exhaustruct
		Name: name,
		Type: DNS_SD_SERVICE,
		Port: port,
	}

	var sv, svErr = dnssd.NewService(cfg)
	if svErr != nil {
		logger.Error("DNS-SD: Failed to create service", "err", svErr)
		return
	}

	var rp, rpErr = dnssd.NewResponder()
	if rpErr != nil {
		logger.Error("DNS-SD: Failed to create responder", "err", rpErr)
		return
	}

	var _, addErr = rp.Add(sv)
	if addErr != nil {
		logger.Error("DNS-SD: Failed to add service", "err", addErr)
		return
	}

	logger.Info("DNS-SD: Announcing", "service", DNS_SD_SERVICE, "name", name, "port", port)

	go func() {
		var respondErr = rp.Respond(ctx)
		if respondErr != nil && ctx.Err() == nil {
			logger.Error("DNS-SD: Responder error", "err", respondErr)
		}
	}()
}
