package main

import "upvote-club/cmd/clubctl/root"

func main() {
	root.Execute()
}
