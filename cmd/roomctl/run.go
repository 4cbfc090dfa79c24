package main

import (
	"context"
	"fmt"
	"os"

	"github.com/coder/websocket"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/coderoom-server/internal/proto"
)

var flagLanguage string

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Execute a source file through the server and print the output",
	Args:  cobra.ExactArgs(1),
	RunE:  runFile,
}

func init() {
	runCmd.Flags().StringVar(&flagLanguage, "language", "python", "language of the file")
}

func runFile(cmd *cobra.Command, args []string) error {
	code, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
	defer cancel()

	conn, err := dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if err := send(ctx, conn, proto.InboundTypeRun, proto.RunData{Language: flagLanguage, Code: string(code)}); err != nil {
		return err
	}
	out, err := waitFor(ctx, conn, proto.EventRunResult)
	if err != nil {
		return err
	}
	describe(out)
	return nil
}
