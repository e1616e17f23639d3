package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/celerix-dev/mediaid/pkg/sdk"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	addr := os.Getenv("MEDIAID_ADDR")
	if addr == "" {
		addr = "http://localhost:5000"
	}

	client := sdk.NewClient(addr, nil)
	ctx := context.Background()

	command := strings.ToUpper(os.Args[1])
	args := os.Args[2:]

	switch command {
	case "HISTORY":
		records, err := client.History(ctx)
		if err != nil {
			log.Fatal(err)
		}
		printJSON(records)

	case "SUBMIT":
		if len(args) < 1 {
			log.Fatal("Usage: mediaid submit <field=value>...")
		}
		form, err := parseFields(args)
		if err != nil {
			log.Fatal(err)
		}
		if err := client.Submit(ctx, form); err != nil {
			log.Fatal(err)
		}
		fmt.Println("OK")

	case "CHAT":
		if len(args) < 1 {
			log.Fatal("Usage: mediaid chat <text>")
		}
		reply, err := client.Chat(ctx, strings.Join(args, " "))
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(reply)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

// parseFields turns field=value arguments into a form. Values may contain '='.
func parseFields(args []string) (url.Values, error) {
	form := url.Values{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q, want field=value", arg)
		}
		form.Add(key, value)
	}
	return form, nil
}

func printUsage() {
	fmt.Println("MediaID CLI - Interface for a running mediaid-server")
	fmt.Println("\nUsage:")
	fmt.Println("  mediaid history")
	fmt.Println("  mediaid submit firstName=Ada bloodType=O- notifications=on ...")
	fmt.Println("  mediaid chat <text>")
	fmt.Println("\nEnvironment Variables:")
	fmt.Println("  MEDIAID_ADDR    Base URL of the server (default: http://localhost:5000)")
}

func printJSON(v any) {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(bytes))
}
