package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"go.uber.org/zap"
)

// AnyEvent is one line from the sync hub: a welcome, collection.synced or
// game.cached event.
type AnyEvent map[string]any

func main() {
	addr := flag.String("addr", "127.0.0.1:7070", "TCP sync server address")
	pretty := flag.Bool("pretty", true, "pretty print JSON events")
	only := flag.String("type", "", "only print events of this type (collection.synced, game.cached)")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()
	logger = logger.Named("sync-client")

	for {
		if err := run(logger, *addr, *pretty, *only); err != nil {
			logger.Warn("disconnected", zap.Error(err))
		}
		time.Sleep(1 * time.Second) // auto reconnect
	}
}

func run(logger *zap.Logger, addr string, pretty bool, only string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	logger.Info("connected", zap.String("addr", addr))

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := sc.Bytes()

		if only != "" {
			var head struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(line, &head); err == nil && head.Type != only {
				continue
			}
		}

		if !pretty {
			fmt.Println(string(line))
			continue
		}

		var obj AnyEvent
		if err := json.Unmarshal(line, &obj); err != nil {
			// not JSON? print raw
			fmt.Println(string(line))
			continue
		}

		b, _ := json.MarshalIndent(obj, "", "  ")
		fmt.Println(string(b))
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}
