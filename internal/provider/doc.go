// Package provider implements the chat-completion client shared by the
// DeepSeek and Qwen providers. The two differ only in their Descriptor;
// request building, credential handling and reply parsing are identical.
//
// Calls are never retried. A failing call returns an *Error whose Kind tells
// the caller whether the credential was missing, the network call failed or
// the reply could not be parsed.
package provider
