package kubemq

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kubemq-io/mq-bridge/internal/bridge"
)

// classify maps a gRPC transport error from the KubeMQ client into the
// bridge.Kind taxonomy of spec.md §7. KubeMQ has no analog to IBM MQ's
// integer reason codes; its failure signal is the gRPC status code of the
// underlying channel.
func classify(err error) *bridge.ClassifiedError {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return bridge.Classify(bridge.KindNoMessage, err)
	}

	st, ok := status.FromError(err)
	if !ok {
		return bridge.Classify(bridge.KindPermanent, err)
	}

	switch st.Code() {
	case codes.DeadlineExceeded:
		return bridge.Classify(bridge.KindNoMessage, err)
	case codes.Unavailable, codes.Aborted:
		return bridge.Classify(bridge.KindConnection, err)
	case codes.Canceled:
		return bridge.Classify(bridge.KindShutdown, err)
	case codes.ResourceExhausted:
		return bridge.Classify(bridge.KindTransient, err)
	case codes.Unauthenticated, codes.PermissionDenied, codes.NotFound, codes.InvalidArgument:
		return bridge.Classify(bridge.KindConfiguration, err)
	default:
		return bridge.Classify(bridge.KindPermanent, err)
	}
}
