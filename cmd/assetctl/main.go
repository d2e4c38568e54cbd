package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/assetlink/assetlink/internal/admin"
	"github.com/assetlink/assetlink/internal/client"
	"github.com/assetlink/assetlink/internal/config"
	"github.com/assetlink/assetlink/internal/logging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const usage = `assetctl -config <path> [flags] <command> [args...]

Commands:
  login <username> <password>
  signup <username> <password> <verify-password> <email>
  send-code <email>
  verify-code <email> <code>
  update-password <email> <new-password> <confirm-password>
  logout <username> <password>
  log-asset <asset-ref> [asset-id]
  list <page> <limit>
  serve

log-asset generates an asset id when none is given. serve keeps the
connection open and runs the admin surface until interrupted.
`

func main() {
	logging.ConfigureRuntime()

	configPath := flag.String("config", "assetlink.toml", "path to client config")
	serveAdmin := flag.Bool("serve-admin", false, "run the admin surface alongside the command")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadClientConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	c, err := client.New(config.ClientOptions(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("client")
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := c.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("connect")
	}

	adminEnabled := *serveAdmin || cfg.Admin.Enabled
	var adminSrv *admin.Server
	if adminEnabled {
		adminSrv = admin.New(cfg.Admin.Addr, c, cfg.Admin.CorsOrigins)
		go func() {
			if err := adminSrv.Serve(); err != nil {
				log.Error().Err(err).Msg("admin surface")
			}
		}()
		defer func() { _ = adminSrv.Shutdown(context.Background()) }()
	}

	if err := run(ctx, c, args); err != nil {
		var domainErr *client.DomainError
		if errors.As(err, &domainErr) {
			log.Error().Str("code", domainErr.Code).Str("detail", domainErr.Detail).Msg("rejected")
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("command")
	}
}

func run(ctx context.Context, c *client.Client, args []string) error {
	command, rest := args[0], args[1:]
	switch command {
	case "login":
		if len(rest) != 2 {
			return fmt.Errorf("usage: login <username> <password>")
		}
		if err := c.Login(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		fmt.Println("logged in")
		return nil

	case "signup":
		if len(rest) != 4 {
			return fmt.Errorf("usage: signup <username> <password> <verify-password> <email>")
		}
		if err := c.SignUp(ctx, rest[0], rest[1], rest[2], rest[3]); err != nil {
			return err
		}
		fmt.Println("account created")
		return nil

	case "send-code":
		if len(rest) != 1 {
			return fmt.Errorf("usage: send-code <email>")
		}
		if err := c.SendVerificationCode(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Println("verification code sent")
		return nil

	case "verify-code":
		if len(rest) != 2 {
			return fmt.Errorf("usage: verify-code <email> <code>")
		}
		if err := c.VerifyCode(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		fmt.Println("code verified")
		return nil

	case "update-password":
		if len(rest) != 3 {
			return fmt.Errorf("usage: update-password <email> <new-password> <confirm-password>")
		}
		if err := c.UpdatePassword(ctx, rest[0], rest[1], rest[2]); err != nil {
			return err
		}
		fmt.Println("password updated")
		return nil

	case "logout":
		if len(rest) != 2 {
			return fmt.Errorf("usage: logout <username> <password>")
		}
		if err := c.Login(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		if err := c.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil

	case "log-asset":
		if len(rest) < 1 || len(rest) > 2 {
			return fmt.Errorf("usage: log-asset <asset-ref> [asset-id]")
		}
		assetRef := rest[0]
		assetID := uuid.NewString()
		if len(rest) == 2 {
			assetID = rest[1]
		}
		if err := c.LogAsset(ctx, assetID, assetRef); err != nil {
			return err
		}
		fmt.Printf("asset saved: %s\n", assetID)
		return nil

	case "list":
		if len(rest) != 2 {
			return fmt.Errorf("usage: list <page> <limit>")
		}
		page, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("invalid page: %q", rest[0])
		}
		limit, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("invalid limit: %q", rest[1])
		}
		list, err := c.RequestAssetList(ctx, page, limit)
		if err != nil {
			return err
		}
		if len(list.Tokens) == 0 {
			fmt.Println("no assets")
			return nil
		}
		fmt.Println(strings.Join(list.Tokens, "\n"))
		if list.Count != "" {
			fmt.Printf("total: %s\n", list.Count)
		}
		return nil

	case "serve":
		fmt.Println("connected; serving until interrupted")
		<-ctx.Done()
		return nil

	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}
