// Command willow runs the Willow assistant in CLI mode.
//
// Commands:
//
//	ask <prompt>                 direct, synchronous prompt
//	submit <provider> <prompt>   background prompt task (openai|google|anthropic)
//	search <query>               background note search task
//	note <text>                  add a note to the store
//	status <id>                  check one background task
//	tasks                        list all background tasks
//	settings                     show loaded settings
//	exit                         quit
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vinayprograms/willow/agent"
	"github.com/vinayprograms/willow/config"
	"github.com/vinayprograms/willow/credentials"
	"github.com/vinayprograms/willow/llm"
	"github.com/vinayprograms/willow/logging"
	"github.com/vinayprograms/willow/notes"
	"github.com/vinayprograms/willow/shutdown"
	"github.com/vinayprograms/willow/tasks"
)

func main() {
	os.Exit(run())
}

func run() int {
	log := logging.New()
	if os.Getenv("WILLOW_DEBUG") != "" {
		log.SetLevel(logging.LevelDebug)
	}

	settings, err := config.Load(os.Getenv("WILLOW_SETTINGS"))
	if err != nil {
		log.Warn("settings_invalid", map[string]interface{}{"error": err.Error()})
	}

	creds, credPath, err := credentials.Load()
	if err != nil {
		log.Error("credentials_unreadable", map[string]interface{}{
			"path":  credPath,
			"error": err.Error(),
		})
		return 1
	}
	if credPath != "" {
		log.Info("credentials_loaded", map[string]interface{}{"path": credPath})
	}

	ctx := context.Background()
	providers := make(map[string]llm.Provider)
	for _, name := range creds.Providers() {
		p, err := llm.NewProvider(ctx, name, llm.Config{
			APIKey: creds.APIKey(name),
			Model:  settings.Model,
		})
		if err != nil {
			log.Warn("provider_init_failed", map[string]interface{}{
				"provider": name,
				"error":    err.Error(),
			})
			continue
		}
		providers[name] = p
	}
	if len(providers) == 0 {
		log.Warn("no_providers_configured", map[string]interface{}{
			"hint": "set OPENAI_API_KEY, GEMINI_API_KEY or ANTHROPIC_API_KEY, or create credentials.toml",
		})
	}

	store, err := notes.Open(os.Getenv("WILLOW_NOTES"))
	if err != nil {
		log.Error("note_store_failed", map[string]interface{}{"error": err.Error()})
		return 1
	}

	a := agent.New(agent.Config{
		Settings:  settings,
		Providers: providers,
		Notes:     store,
		Logger:    log,
	})

	coord := shutdown.New(log, 10*time.Second)
	coord.Register("agent", func(ctx context.Context) error { return a.Close() })
	coord.HandleSignals()

	repl(a, store)

	coord.Shutdown()
	return 0
}

func repl(a *agent.Agent, store *notes.Store) {
	fmt.Println("Willow assistant (CLI mode)")
	fmt.Println("Type 'help' for commands, 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nwillow> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch strings.ToLower(cmd) {
		case "exit", "quit":
			return

		case "help":
			fmt.Println("ask <prompt> | submit <provider> <prompt> | search <query> |")
			fmt.Println("note <text> | status <id> | tasks | settings | exit")

		case "ask":
			if rest == "" {
				fmt.Println("usage: ask <prompt>")
				continue
			}
			answer, err := a.ProcessPrompt(context.Background(), rest)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Println(answer)

		case "submit":
			provider, prompt, _ := strings.Cut(rest, " ")
			prompt = strings.TrimSpace(prompt)
			if provider == "" || prompt == "" {
				fmt.Println("usage: submit <openai|google|anthropic> <prompt>")
				continue
			}
			id, err := a.SubmitTask(agent.PromptTask{Provider: provider, Prompt: prompt})
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Printf("task %d submitted\n", id)

		case "search":
			if rest == "" {
				fmt.Println("usage: search <query>")
				continue
			}
			id, err := a.SubmitTask(agent.NoteSearchTask{Query: rest})
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Printf("task %d submitted\n", id)

		case "note":
			if rest == "" {
				fmt.Println("usage: note <text>")
				continue
			}
			id, err := store.Add(rest)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Printf("note %s saved\n", id)

		case "status":
			id, err := strconv.ParseInt(rest, 10, 64)
			if err != nil {
				fmt.Println("usage: status <numeric task id>")
				continue
			}
			snap, err := a.TaskStatus(id)
			if err != nil {
				fmt.Printf("no task with id %d\n", id)
				continue
			}
			printTask(snap)

		case "tasks":
			all := a.AllTaskStatuses()
			if len(all) == 0 {
				fmt.Println("no tasks submitted yet")
				continue
			}
			pending, running := a.QueueDepth()
			fmt.Printf("%d task(s), %d pending, %d running\n", len(all), pending, running)
			for _, snap := range all {
				printTask(snap)
			}

		case "settings":
			s := a.Settings()
			fmt.Printf("theme: %s\nfont_size: %d\napi_preference: %s\nmax_concurrent_tasks: %d\n",
				s.Theme, s.FontSize, s.APIPreference, s.MaxConcurrentTasks)
			if s.Model != "" {
				fmt.Printf("model: %s\n", s.Model)
			}

		default:
			fmt.Printf("unknown command %q; type 'help'\n", cmd)
		}
	}
}

func printTask(snap *tasks.Snapshot) {
	line := fmt.Sprintf("[%d] %-9s %s", snap.ID, snap.Status, snap.Description)
	switch snap.Status {
	case tasks.StatusCompleted:
		line += " => " + snap.Result
	case tasks.StatusFailed:
		line += " => error: " + snap.Error
	}
	fmt.Println(line)
}
