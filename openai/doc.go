// Copyright (c) Microsoft. All rights reserved.

// Package openai provides a [agentframework.ChatClient] implementation for
// the OpenAI Chat Completions API and compatible endpoints such as Azure AI
// Foundry.
//
// Create a client and pass it to [agentframework.NewAgent]:
//
//	client := openai.New(os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("gpt-4o-mini"),
//	)
//
//	agent := agentframework.NewAgent(client)
//
// The client supports tool calling and JSON Schema response formats, which
// is what [agentframework.GenerateObject] relies on.
//
// # Configuration
//
// Use functional options to configure the client:
//
//   - [WithModel]: set the default model
//   - [WithBaseURL]: override the API endpoint (e.g., Azure AI Foundry)
//   - [WithAzureCredential]: authenticate with a Microsoft Entra credential
//   - [WithHeaders]: add custom headers to every request
//   - [WithHTTPClient]: provide a custom http.Client
//
// # Testing
//
// Provide a mock http.Client via [WithHTTPClient] with a custom RoundTripper.
package openai
