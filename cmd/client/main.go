package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	pb "gitlab.ozon.dev/pupkingeorgij/order-service/internal/api"
	"gitlab.ozon.dev/pupkingeorgij/order-service/internal/config"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	addr := flag.String("addr", cfg.ServerAddr, "order service address")
	userID := flag.String("user", "user1", "user whose orders are listed")
	limit := flag.Int("limit", 10, "page size hint")
	page := flag.Int("page", 1, "page number hint")
	follow := flag.String("follow", "", "order ID to follow status updates for")
	timeout := flag.Duration("timeout", 10*time.Second, "timeout for unary calls")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("Failed to create client for %s: %v", *addr, err)
	}
	defer conn.Close()

	client := pb.NewOrderServiceClient(conn)

	callCtx, callCancel := context.WithTimeout(ctx, *timeout)
	resp, err := client.ListOrders(callCtx, &pb.ListOrdersRequest{
		UserId: *userID,
		Limit:  int32(*limit),
		Page:   int32(*page),
	})
	callCancel()
	if err != nil {
		log.Fatalf("ListOrders failed: %v", err)
	}
	printJSON(resp)

	if *follow == "" {
		return
	}

	stream, err := client.StreamOrderUpdates(ctx, &pb.StreamOrderUpdatesRequest{OrderId: *follow})
	if err != nil {
		log.Fatalf("StreamOrderUpdates failed: %v", err)
	}
	for {
		update, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Fatalf("Stream closed: %v", err)
		}
		printJSON(update)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
	}
}
