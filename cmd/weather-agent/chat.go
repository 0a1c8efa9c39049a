// Copyright (c) Microsoft. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	af "github.com/microsoft/weather-agent/go/agentframework"
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the Weather Agent in the terminal",
		Long: `Start a multi-turn conversation. The transcript is kept for the
lifetime of the process. Type "/new" to start over, "quit" to exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asst, err := a.newAssistant()
			if err != nil {
				return err
			}
			return runChat(cmd.Context(), asst.Agent(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runChat reads one user message per line and prints each answer. A failed
// exchange is reported and the conversation continues.
func runChat(ctx context.Context, agent af.Generator, in io.Reader, out io.Writer) error {
	store := af.NewInMemoryStore()
	session := af.NewSession("terminal_"+uuid.NewString(), store)

	fmt.Fprintln(out, heading("Chat with the Weather Agent")+dim(" (type 'quit' to exit, '/new' to start over)"))
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "/new":
			session = af.NewSession("terminal_"+uuid.NewString(), store)
			fmt.Fprintln(out, dim("Started a new conversation."))
			continue
		}

		resp, err := session.Exchange(ctx, agent, af.NewUserMessage(input))
		if err != nil {
			fmt.Fprintf(out, "%s %v\n\n", failMark, err)
			continue
		}

		fmt.Fprintf(out, "Assistant: %s\n", resp.Text)
		if tools := resp.ToolNames(); len(tools) > 0 {
			fmt.Fprintln(out, dim("  [tools: "+strings.Join(tools, ", ")+"]"))
		}
		if resp.Usage.TotalTokens > 0 {
			fmt.Fprintln(out, dim(fmt.Sprintf("  [tokens: %d in, %d out]", resp.Usage.InputTokens, resp.Usage.OutputTokens)))
		}
		fmt.Fprintln(out)
	}
	return scanner.Err()
}
