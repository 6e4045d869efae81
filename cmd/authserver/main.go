// Command authserver runs the Authorization Server HTTP API, grounded on
// services/gateway/growth/growthapi.go's rest.MustNewServer /
// RegisterHandlers / server.Start() startup sequence, with config.Load()
// (environment variables) in place of conf.MustLoad (a YAML file).
package main

import (
	"fmt"
	"log"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/service"
	"github.com/zeromicro/go-zero/rest"

	"github.com/johnbasrai/identityplane/internal/authserver/config"
	"github.com/johnbasrai/identityplane/internal/authserver/handler"
	"github.com/johnbasrai/identityplane/internal/authserver/svc"
)

func main() {
	c, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load authorization server configuration: %v", err)
	}

	restConf := rest.RestConf{
		ServiceConf: service.ServiceConf{
			Name: "authserver",
			Log: logx.LogConf{
				Mode:  "console",
				Level: "info",
			},
		},
		Host: c.Host,
		Port: c.Port,
	}

	server := rest.MustNewServer(restConf)
	defer server.Stop()

	svcCtx, err := svc.NewServiceContext(c)
	if err != nil {
		log.Fatalf("failed to initialize authorization server: %v", err)
	}

	handler.RegisterHandlers(server, svcCtx)

	fmt.Printf("Starting authorization server at %s:%d...\n", c.Host, c.Port)
	server.Start()
}
