// Package model provides the data structures shared by the publish workflow.
// It defines the states of a publish run, the hooks a publish option can attach to them,
// and the error kinds every component reports.
package model
