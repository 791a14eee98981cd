package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"gamenight/internal/app"
	"gamenight/internal/grpcserver"
	"gamenight/pkg/utils"
)

func main() {
	configPath := flag.String("config", "gamenight.yaml", "path to YAML config")
	flag.Parse()

	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := utils.NewLogger(cfg.Dev())
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	listener, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Fatal("grpc listen failed", zap.String("addr", cfg.Server.GRPCAddr), zap.Error(err))
	}

	svc := grpcserver.NewServer(a.Collections, a.Games, logger.Named("grpc"))
	grpcServer := grpc.NewServer()
	grpcserver.RegisterCollectionServiceServer(grpcServer, svc)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		grpcServer.GracefulStop()
	}()

	logger.Info("gRPC server listening", zap.String("addr", cfg.Server.GRPCAddr))
	if err := grpcServer.Serve(listener); err != nil {
		logger.Error("grpc server stopped", zap.Error(err))
	}
}
