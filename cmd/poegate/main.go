// Command poegate is a proxy in front of the Poe bot-aggregation API. It
// adds multi-turn session tracking and Claude thinking-protocol handling on
// top of the raw bot-query endpoint.
//
// Usage:
//
//	POE_API_KEY=... poegate serve
//	POE_API_KEY=... poegate ask --bot Claude-3-Sonnet "What is the capital of France?"
//	POE_API_KEY=... poegate models
package main

func main() {
	Execute()
}
