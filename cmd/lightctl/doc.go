// Command lightctl controls Elgato lights through Control Center's
// JSON-RPC WebSocket.
//
//	lightctl devices
//	lightctl on "Key Light Left"
//	lightctl set-brightness 40
//	lightctl watch
//	lightctl simulate --devices 3
//
// Without a device argument, on/off/set-* apply to every device.
package main
