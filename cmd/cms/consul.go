package main

import (
	"net/url"
	"strconv"

	"github.com/hashicorp/consul/api"

	"github.com/flarexio/cms/conf"
)

func registerConsul(cfg *conf.Config, port int) (func(), error) {
	consul := cfg.Discovery.Consul

	config := api.DefaultConfig()
	if consul.Address != "" {
		config.Address = consul.Address
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}

	name := consul.Service
	if name == "" {
		name = cfg.Name
	}

	host := "localhost"
	if u, err := url.Parse(cfg.BaseURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}

	id := name + "-" + host + "-" + strconv.Itoa(port)

	registration := &api.AgentServiceRegistration{
		ID:      id,
		Name:    name,
		Address: host,
		Port:    port,
		Tags:    consul.Tags,
		Meta: map[string]string{
			"version": Version,
		},
		Check: &api.AgentServiceCheck{
			HTTP:                           "http://" + host + ":" + strconv.Itoa(port) + "/healthz",
			Interval:                       "10s",
			Timeout:                        "2s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	if err := client.Agent().ServiceRegister(registration); err != nil {
		return nil, err
	}

	return func() {
		client.Agent().ServiceDeregister(id)
	}, nil
}
