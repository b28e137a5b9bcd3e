// Command peer is a headless editor participant. Every stdin line is
// appended to the shared buffer; ":accept", ":save" and ":show" act on it.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	gosync "sync"
	"syscall"
	"time"

	"github.com/ujjwalpathaak/ai-code-editor/internal/editor"
	"github.com/ujjwalpathaak/ai-code-editor/internal/logger"
	"github.com/ujjwalpathaak/ai-code-editor/internal/sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("peer stopped")
		os.Exit(1)
	}
}

func run() error {
	serverVar := flag.String("server", "http://localhost:5000", "editor server base URL")
	userVar := flag.String("user", "anonymous", "user label stored with saved snippets")
	loadVar := flag.Uint64("load", 0, "snippet id to start from")
	quietVar := flag.Duration("quiet", editor.DefaultQuietPeriod, "pause after the last edit before asking for a suggestion")
	timeoutVar := flag.Duration("timeout", 30*time.Second, "HTTP request timeout")
	levelVar := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger.Init("development", *levelVar)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := sync.NewSyncClient(*serverVar, *timeoutVar)
	conn, err := sync.DialRelay(ctx, *serverVar, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	surface := &cursor{}
	session := editor.NewSession(client, conn, editor.Options{
		QuietPeriod: *quietVar,
		OnSuggestion: func(s string) {
			fmt.Printf("suggestion: %s  (:accept to insert)\n", s)
		},
	})
	defer session.Close()
	session.Attach(surface)

	if *loadVar != 0 {
		record, err := client.LoadSnippet(ctx, *loadVar)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("snippet %d not found", *loadVar)
		}
		// not broadcast, like any freshly opened editor
		session.ApplyRemote(record.Code)
		surface.SetCursor(editor.EndOf(record.Code))
		log.Info().Uint64("id", record.ID).Str("user", record.User).Msg("loaded snippet")
	}

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return conn.Run(gctx, func(code string) {
			session.ApplyRemote(code)
			surface.SetCursor(editor.EndOf(code))
			fmt.Printf("--- remote update ---\n%s\n", code)
		})
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					stop()
					return nil
				}
				handleLine(gctx, line, session, surface, client, *userVar)
			}
		}
	})

	return g.Wait()
}

func handleLine(ctx context.Context, line string, session *editor.Session, surface *cursor, client *sync.SyncClient, user string) {
	switch strings.TrimSpace(line) {
	case ":accept":
		if !session.Accept() {
			fmt.Println("nothing to accept")
		}
	case ":show":
		fmt.Println(session.Buffer())
	case ":save":
		id, err := client.SaveSnippet(ctx, session.Buffer(), user)
		if err != nil {
			log.Error().Err(err).Msg("save failed")
			return
		}
		fmt.Printf("Code saved, id %d\n", id)
	default:
		buffer := session.Buffer()
		if buffer != "" && !strings.HasSuffix(buffer, "\n") {
			buffer += "\n"
		}
		buffer += line
		session.Edit(buffer)
		surface.SetCursor(editor.EndOf(buffer))
	}
}

// cursor follows the end of the buffer, the way appending lines does
type cursor struct {
	mu  gosync.Mutex
	pos editor.Position
}

func (c *cursor) Cursor() editor.Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

func (c *cursor) SetCursor(p editor.Position) {
	c.mu.Lock()
	c.pos = p
	c.mu.Unlock()
}
