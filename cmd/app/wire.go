//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/slacksum-agent/internal/bootstrap"
	"github.com/yanqian/slacksum-agent/internal/domain/agent"
	"github.com/yanqian/slacksum-agent/internal/domain/notification"
	"github.com/yanqian/slacksum-agent/internal/infra/config"
	"github.com/yanqian/slacksum-agent/internal/infra/push"
	httpiface "github.com/yanqian/slacksum-agent/internal/interface/http"
	"github.com/yanqian/slacksum-agent/pkg/logger"
)

var notificationSet = wire.NewSet(
	providePushOptions,
	push.NewClient,
	notification.NewService,
	wire.Bind(new(notification.RelayClient), new(*push.Client)),
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAgentConfig,
		provideContextStore,
		provideSummarizer,
		provideTokenCounter,
		agent.NewService,
		notificationSet,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}

func initializeNotificationService() (notification.Service, error) {
	wire.Build(
		config.Load,
		logger.New,
		notificationSet,
	)
	return nil, nil
}
