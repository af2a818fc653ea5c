package main

import "redmine-planner.com/redmine-planner/cmd"

func main() {
	cmd.Execute()
}
