package main

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/coderoom-server/internal/proto"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat; /name, /lang and /code change room state",
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, _ []string) error {
	baseCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, err := dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if err := join(ctx, conn); err != nil {
		return err
	}
	logger.Info().Str("addr", flagAddr).Str("room", flagRoom).Str("name", flagName).Msg("connected")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	return writeLoop(ctx, conn)
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var out outbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			logger.Warn().Err(err).Msg("read error")
			return
		}
		describe(out)
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			typ, data := parseLine(strings.TrimSpace(line))
			if typ == "" {
				continue
			}
			if err := send(ctx, conn, typ, data); err != nil {
				return err
			}
		}
	}
}

// parseLine maps a typed line onto an inbound message. Blank lines map to
// nothing.
func parseLine(line string) (string, any) {
	if line == "" {
		return "", nil
	}
	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "/name":
		return proto.InboundTypeRename, proto.RenameData{Name: arg}
	case "/lang":
		return proto.InboundTypeLang, proto.LangData{RoomID: flagRoom, Language: arg}
	case "/code":
		return proto.InboundTypeCode, proto.CodeData{RoomID: flagRoom, Code: arg}
	default:
		return proto.InboundTypeChat, proto.ChatData{RoomID: flagRoom, Text: line}
	}
}
