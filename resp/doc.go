// Package resp implements the client side of the RESP2 wire protocol for the
// relational overlay commands (FPWRITE, FPSCAN, METAKEYS).
//
// It only knows about argument sequences, frames and replies. Connection
// management, node selection and fan-out live in package addb.
//
// # Argument sequences
//
// Args is an ordered, append-only list of tokens. Position is meaning: the
// builders in package addb append tokens in the exact order the server
// expects, and NewRequest seals the sequence when it is handed off:
//
//	args := resp.NewArgs(8)
//	args.Add("D:{100:1:2}").Add("1:2").Add("4").AddInt(resp.DefaultWriteMode)
//	args.AddStrings("D1", "D2", "D3", "D4")
//	req := resp.NewRequest(resp.CmdFpWrite, args)
//
// # Serialization and parsing
//
// WriteRequest encodes a request as an array of bulk strings:
//
//	err := resp.WriteRequest(bw, req)
//	err = bw.Flush()
//
// ReadResponse parses one reply:
//
//	reply, err := resp.ReadResponse(br)
//	if err != nil {
//	    if resp.ShouldCloseConnection(err) {
//	        conn.Close()
//	    }
//	    return err
//	}
//	if reply.HasError() {
//	    return reply.Error // node rejected the command
//	}
//
// # Error handling
//
// Error replies (-ERR ...) are carried in Response.Error as *ServerError and
// leave the connection usable. I/O failures (*ConnectionError) and malformed
// replies (*ParseError) require closing the connection; ShouldCloseConnection
// answers that question for any error.
package resp
