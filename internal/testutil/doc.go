// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing agents, conversations and execution
// requests. They are not intended for production usage.
package testutil
