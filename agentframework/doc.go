// Copyright (c) Microsoft. All rights reserved.

// Package agentframework provides the agent runtime behind the weather
// assistant: messages with typed content parts, schema-described tools, a
// bounded tool-calling loop, transcript storage and middleware.
//
// # Quick Start
//
// Create a ChatClient (e.g., from the openai package) and build an Agent:
//
//	client := openai.New(os.Getenv("OPENAI_API_KEY"), openai.WithModel("gpt-4o-mini"))
//
//	agent := agentframework.NewAgent(client,
//	    agentframework.WithName("Weather Agent"),
//	    agentframework.WithInstructions("You are a helpful weather assistant."),
//	    agentframework.WithTools(weatherTool),
//	)
//
//	resp, err := agent.Generate(ctx, []agentframework.Message{
//	    agentframework.NewUserMessage("What's the weather in Lisbon?"),
//	})
//
// # Messages
//
// A [Message] has a role and a list of [Part] values. On the wire the content
// is either a plain string or an array of parts discriminated by "type":
// "text", "tool-call" or "tool-result". [Message.Validate] checks that the
// parts are allowed for the role.
//
// # Tools
//
// Use [NewTypedTool] for type-safe tools with automatic JSON Schema generation
// and argument validation:
//
//	type lookupArgs struct {
//	    Location string `json:"location" jsonschema:"description=City name,required"`
//	}
//
//	tool := agentframework.NewTypedTool("weatherTool", "Get current weather for a location",
//	    func(ctx context.Context, args lookupArgs) (*weather.Reading, error) {
//	        return client.Lookup(ctx, args.Location)
//	    },
//	)
//
// [GenerateObject] uses the same schema machinery to constrain a model's
// output to a Go type.
//
// # Sessions
//
// A [TranscriptStore] keeps transcripts keyed by session ID. [Session.Exchange]
// appends the caller's message, runs a [Generator] over the whole transcript
// and appends the turns it produced, all under the session's lock.
//
// # Middleware
//
// Add cross-cutting behavior at three levels:
//
//	agent := agentframework.NewAgent(client,
//	    agentframework.WithAgentMiddleware(agentframework.LoggingMiddleware(logger)),
//	    agentframework.WithFunctionMiddleware(agentframework.ToolLoggingMiddleware(logger)),
//	)
package agentframework
