// Package main provides the entry point for confhelper.
//
// confhelper merges layered configuration files, expands ${...}
// placeholders and validates the result against composable schemas:
//
//	confhelper --schema schema.yaml --file base.yaml --file local.yaml dump
//	confhelper --dir ./conf.d --set server.port=9090 get server.port
//	confhelper --file app.yaml --schema schema.yaml validate
//	confhelper --file app.yaml watch --metrics-addr :9090
package main
