package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/taskdock-dev/taskdock/pkg/sdk"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	client := sdk.New("") // resolves TASKDOCK_ADDR, then the local default
	ctx := context.Background()

	session, _ := loadSession()
	if session != nil {
		client.SetToken(session.Token)
	}

	command := strings.ToUpper(os.Args[1])
	args := os.Args[2:]

	switch command {
	case "REGISTER":
		if len(args) < 2 {
			log.Fatal("Usage: taskdock REGISTER <email> <password>")
		}
		if err := client.Register(ctx, args[0], args[1]); err != nil {
			log.Fatal(err)
		}
		fmt.Println("OK")

	case "LOGIN":
		if len(args) < 2 {
			log.Fatal("Usage: taskdock LOGIN <email> <password>")
		}
		user, err := client.Login(ctx, args[0], args[1])
		if err != nil {
			log.Fatal(err)
		}
		if err := saveSession(&Session{Token: client.Token(), UID: user.UID, Email: user.Email}); err != nil {
			log.Fatalf("Login succeeded but saving session failed: %v", err)
		}
		fmt.Printf("Logged in as %s\n", user.Email)

	case "LOGOUT":
		if err := clearSession(); err != nil {
			log.Fatal(err)
		}
		fmt.Println("OK")

	case "WHOAMI":
		if session == nil {
			log.Fatal("Not logged in")
		}
		fmt.Printf("%s (%s)\n", session.Email, session.UID)

	case "LIST":
		tasks, err := client.Tasks(ctx)
		if err != nil {
			log.Fatal(err)
		}
		printJSON(tasks)

	case "ADD":
		if len(args) < 1 {
			log.Fatal("Usage: taskdock ADD <text>")
		}
		task, err := client.CreateTask(ctx, strings.Join(args, " "))
		if err != nil {
			log.Fatal(err)
		}
		printJSON(task)

	case "DONE":
		if len(args) < 1 {
			log.Fatal("Usage: taskdock DONE <taskID>")
		}
		if err := client.SetCompleted(ctx, args[0], true); err != nil {
			log.Fatal(err)
		}
		fmt.Println("OK")

	case "UNDONE":
		if len(args) < 1 {
			log.Fatal("Usage: taskdock UNDONE <taskID>")
		}
		if err := client.SetCompleted(ctx, args[0], false); err != nil {
			log.Fatal(err)
		}
		fmt.Println("OK")

	case "RM":
		if len(args) < 1 {
			log.Fatal("Usage: taskdock RM <taskID>")
		}
		if err := client.DeleteTask(ctx, args[0]); err != nil {
			log.Fatal(err)
		}
		fmt.Println("OK")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func printUsage() {
	fmt.Println("taskdock CLI - client for the taskdock task service")
	fmt.Println("\nUsage:")
	fmt.Println("  taskdock REGISTER <email> <password>")
	fmt.Println("  taskdock LOGIN <email> <password>")
	fmt.Println("  taskdock LOGOUT")
	fmt.Println("  taskdock WHOAMI")
	fmt.Println("  taskdock LIST")
	fmt.Println("  taskdock ADD <text>")
	fmt.Println("  taskdock DONE <taskID>")
	fmt.Println("  taskdock UNDONE <taskID>")
	fmt.Println("  taskdock RM <taskID>")
	fmt.Println("\nEnvironment Variables:")
	fmt.Println("  TASKDOCK_ADDR          Base URL of the daemon (default: http://localhost:7080)")
	fmt.Println("  TASKDOCK_INSECURE_TLS  Set to true to accept self-signed certificates")
}

func printJSON(v any) {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(bytes))
}
