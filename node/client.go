// Package node implements the JSON-RPC client used to query the oracle node.
package node

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"sync/atomic"
	"time"

	"witbridge/chain"
)

// Client issues timed request/response calls against an oracle node.
//
// Errors returned by a Client fall into three classes the caller branches on:
// *RPCError (the node answered with an application-level error, scoped to
// the one record being queried), *DecodeError (a response arrived but could
// not be decoded into the expected shape), and everything else (transport or
// timeout failure; indistinguishable from a connectivity loss).
type Client interface {
	DataRequestReport(ctx context.Context, drTxHash string) (*chain.DataRequestReport, error)
	GetBlock(ctx context.Context, blockHash string) (*chain.Block, error)
}

// RPCError is an application-level JSON-RPC error returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// DecodeError marks a response that arrived but did not decode into the
// expected shape.
type DecodeError struct {
	Method string
	Cause  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s response decode error: %v", e.Method, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// DefaultCallTimeout bounds every node call unless configured otherwise.
const DefaultCallTimeout = 5 * time.Second

// TCPClient speaks newline-delimited JSON-RPC 2.0 to an oracle node over
// TCP. Each call opens its own connection; Timeout bounds dial, write and
// read together.
type TCPClient struct {
	addr    string
	timeout time.Duration
	logger  *log.Logger
	reqID   uint64
}

// NewTCPClient creates a client for the node listening at addr.
func NewTCPClient(addr string, timeout time.Duration, logger *log.Logger) *TCPClient {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	logger.Printf("Oracle node client configured for %s (call timeout %s)", addr, timeout)
	return &TCPClient{addr: addr, timeout: timeout, logger: logger}
}

// DataRequestReport asks the node for the resolution report of a data
// request transaction. A nil report with a nil error means the node does not
// consider the request resolved yet.
func (c *TCPClient) DataRequestReport(ctx context.Context, drTxHash string) (*chain.DataRequestReport, error) {
	raw, err := c.call(ctx, "dataRequestReport", []interface{}{drTxHash})
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var report *chain.DataRequestReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, &DecodeError{Method: "dataRequestReport", Cause: err}
	}
	return report, nil
}

// GetBlock fetches the block identified by blockHash.
func (c *TCPClient) GetBlock(ctx context.Context, blockHash string) (*chain.Block, error) {
	raw, err := c.call(ctx, "getBlock", []interface{}{blockHash})
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, &DecodeError{Method: "getBlock", Cause: fmt.Errorf("empty result")}
	}
	var block chain.Block
	if err := json.Unmarshal(raw, &block); err != nil {
		return nil, &DecodeError{Method: "getBlock", Cause: err}
	}
	return &block, nil
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

func (c *TCPClient) call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("set deadline for %s call: %w", method, err)
		}
	}

	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      atomic.AddUint64(&c.reqID, 1),
		Method:  method,
		Params:  params,
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", method, err)
	}
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write %s request: %w", method, err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", method, err)
	}

	var resp rpcResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, &DecodeError{Method: method, Cause: err}
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}
