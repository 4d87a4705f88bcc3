// Package meshcli provides the text command dialect and the line transport used to
// configure MeshCore repeaters through their serial console.
//
// A repeater accepts one command per line terminated by a carriage return and echoes
// the line back followed by a short reply. This package only writes lines; replies are
// drained and logged, never interpreted.
//
// Example Usage:
//
//	tr := meshcli.NewTransport(meshcli.Config{
//	    ConnectionType: meshcli.ConnectionSerial,
//	    PortName:       "/dev/ttyUSB0",
//	    BaudRate:       115200,
//	})
//	if err := tr.Connect(); err != nil {
//	    log.Fatal(err)
//	}
//	defer tr.Close()
//
//	err := tr.SendLine(ctx, meshcli.SetName("Node1"))
//
// Commands can also be sent over a TCP bridge to the UART (ser2net and similar) by
// setting ConnectionType to ConnectionTCP and Address to host:port.
package meshcli
