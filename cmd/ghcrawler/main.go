// Package main provides the entry point for the ghcrawler CLI.
//
// ghcrawler searches GitHub for keywords through a pool of forward proxies
// and writes the matching repository, issue, or wiki URLs as JSON.
//
// Usage:
//
//	ghcrawler init
//	ghcrawler crawl -i ghcrawler.json -o result.json
//
// See --help for all available options.
package main

func main() {
	Execute()
}
