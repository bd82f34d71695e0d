//
// Copyright (c) SAS Institute Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Package realip recovers the client address of requests that arrive through
// trusted reverse proxies.
package realip

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/sassoftware/ipakit/internal/zhttp"
)

const forwardedFor = "X-Forwarded-For"

// Middleware replaces req.RemoteAddr with the address reported in
// X-Forwarded-For, but only for hops within trustedProxies. With no trusted
// proxies the header is ignored.
func Middleware(trustedProxies []string) (func(http.Handler) http.Handler, error) {
	trustedNets, err := ParseNetworks(trustedProxies)
	if err != nil {
		return nil, err
	}
	return func(next http.Handler) http.Handler {
		if len(trustedNets) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if clientIP, proxied := trustedClient(trustedNets, r); proxied {
				r.RemoteAddr = clientIP
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

// ParseNetworks parses a list of IP addresses and CIDR networks
func ParseNetworks(values []string) ([]*net.IPNet, error) {
	var nets []*net.IPNet
	for _, v := range values {
		if strings.ContainsRune(v, '/') {
			_, ipnet, err := net.ParseCIDR(v)
			if err != nil {
				return nil, fmt.Errorf("trusted_proxies %q: %w", v, err)
			}
			nets = append(nets, ipnet)
			continue
		}
		ip := net.ParseIP(v)
		if ip == nil {
			return nil, fmt.Errorf("trusted_proxies %q: invalid IP or IP network", v)
		}
		bits := 128
		if ip.To4() != nil {
			bits = 32
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets, nil
}

func trustedClient(trustedNets []*net.IPNet, req *http.Request) (string, bool) {
	remoteIP := zhttp.StripPort(req.RemoteAddr)
	if !hopTrusted(trustedNets, remoteIP) {
		return remoteIP, false
	}
	var hops []string
	for _, xff := range req.Header.Values(forwardedFor) {
		for _, hop := range strings.Split(xff, ",") {
			if hop = strings.TrimSpace(hop); hop != "" {
				hops = append(hops, hop)
			}
		}
	}
	// walk back from the nearest hop to the first one we don't trust
	for i := len(hops) - 1; i >= 0; i-- {
		if !hopTrusted(trustedNets, hops[i]) {
			return hops[i], true
		}
	}
	if len(hops) != 0 {
		return hops[0], true
	}
	return remoteIP, false
}

func hopTrusted(trustedNets []*net.IPNet, addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range trustedNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
