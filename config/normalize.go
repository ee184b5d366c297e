package config

import "strings"

func (c *Config) normalize() {
	c.URL = strings.TrimSpace(c.URL)
	if c.URL == "" {
		c.URL = defaultURL
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	c.normalizeDiscovery()
	c.Simulate.Listen = strings.TrimSpace(c.Simulate.Listen)
	if c.Simulate.Listen == "" {
		c.Simulate.Listen = defaultSimulateListen
	}
}

func (c *Config) normalizeDiscovery() {
	endpoints := c.Discovery.EtcdEndpoints[:0]
	for _, e := range c.Discovery.EtcdEndpoints {
		if e = strings.TrimSpace(e); e != "" {
			endpoints = append(endpoints, e)
		}
	}
	c.Discovery.EtcdEndpoints = endpoints
	c.Discovery.Balancer = strings.ToLower(strings.TrimSpace(c.Discovery.Balancer))
	if c.Discovery.Balancer == "" {
		c.Discovery.Balancer = defaultBalancer
	}
	if strings.TrimSpace(c.Discovery.Service) == "" {
		c.Discovery.Service = defaultService
	}
}

// UsesDiscovery reports whether the endpoint comes from etcd.
func (c *Config) UsesDiscovery() bool {
	return len(c.Discovery.EtcdEndpoints) > 0
}
