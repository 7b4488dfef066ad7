package main

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"golang.org/x/exp/slices"
)

const DefaultDiscoverService = "_thunderboard._tcp"

// a producer advertised over mdns
type Producer struct {
	Instance string
	Url      string
}

// browses for producers until the timeout
func Discover(ctx context.Context, service string, timeout time.Duration) ([]*Producer, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("mdns resolver: %w", err)
	}

	browseCtx, browseCancel := context.WithTimeout(ctx, timeout)
	defer browseCancel()

	entries := make(chan *zeroconf.ServiceEntry, 32)
	var stateLock sync.Mutex
	producers := []*Producer{}
	go func() {
		for {
			select {
			case <-browseCtx.Done():
				return
			case entry, ok := <-entries:
				if !ok {
					return
				}
				if producer := producerFromEntry(entry); producer != nil {
					func() {
						stateLock.Lock()
						defer stateLock.Unlock()
						producers = append(producers, producer)
					}()
				}
			}
		}
	}()

	if err := resolver.Browse(browseCtx, service, "local.", entries); err != nil {
		return nil, fmt.Errorf("mdns browse %s: %w", service, err)
	}
	<-browseCtx.Done()

	stateLock.Lock()
	defer stateLock.Unlock()
	return slices.Clone(producers), nil
}

// the producer may publish its websocket path as a `path=` txt record
func producerFromEntry(entry *zeroconf.ServiceEntry) *Producer {
	var ip net.IP
	if 0 < len(entry.AddrIPv4) {
		ip = entry.AddrIPv4[0]
	} else if 0 < len(entry.AddrIPv6) {
		ip = entry.AddrIPv6[0]
	} else {
		return nil
	}
	path := "/"
	for _, text := range entry.Text {
		if v, ok := strings.CutPrefix(text, "path="); ok && v != "" {
			path = v
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}
		}
	}
	return &Producer{
		Instance: entry.Instance,
		Url:      fmt.Sprintf("ws://%s%s", net.JoinHostPort(ip.String(), fmt.Sprint(entry.Port)), path),
	}
}
