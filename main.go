package main

import "feedbackinsight/internal/app"

func main() {
	app.Main()
}
