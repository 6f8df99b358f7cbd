// vmsim drives the virtual memory translator with synthetic access
// workloads.
package main

func main() {
	Execute()
}
