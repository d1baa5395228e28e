package folio

import (
	"net"
	"strconv"
)

// ServerConf configures the http server
type ServerConf struct {
	IPListen          string   `yaml:"ip_listen"`
	Port              int      `yaml:"port"`
	TLS               tlsConf  `yaml:"tls"`
	TrustedProxies    []string `yaml:"trusted_proxies"`
	ForwardedIPHeader string   `yaml:"forwarded_ip_header"`
	// ExternalURL is the url under which the server is reachable; it is used
	// in the api docs
	ExternalURL string `yaml:"external_url"`
	// AdminAPIEnabled and AdminAPIPort are set from the api config
	AdminAPIEnabled bool `yaml:"-"`
	AdminAPIPort    int  `yaml:"-"`
}

type tlsConf struct {
	Enabled      bool   `yaml:"enabled"`
	RedirectHTTP bool   `yaml:"redirect_http"`
	Cert         string `yaml:"cert"`
	Key          string `yaml:"key"`
}

func (c ServerConf) listenAddr(port int) string {
	return net.JoinHostPort(c.IPListen, strconv.Itoa(port))
}
