// Package recentbooks implements the Recently Registered Books query use case.
package recentbooks
