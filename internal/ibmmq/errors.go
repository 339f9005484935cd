package ibmmq

import (
	"errors"

	mq "github.com/ibm-messaging/mq-golang/v5/ibmmq"

	"github.com/kubemq-io/mq-bridge/internal/bridge"
)

// transientReasons, connectionReasons, configurationReasons and
// shutdownReasons mirror the MQ reason-code sets of
// original_source/src/ibm_mq/error_classification.py, translated to this
// driver's ibmmq.MQRC_* constants.
var (
	transientReasons = map[int32]bool{
		mq.MQRC_NO_MSG_AVAILABLE:      true,
		mq.MQRC_Q_FULL:                true,
		mq.MQRC_RESOURCE_PROBLEM:      true,
		mq.MQRC_PAGESET_ERROR:         true,
		mq.MQRC_STORAGE_NOT_AVAILABLE: true,
		mq.MQRC_BACKED_OUT:            true,
	}

	connectionReasons = map[int32]bool{
		mq.MQRC_CONNECTION_BROKEN:   true,
		mq.MQRC_CONNECTION_ERROR:    true,
		mq.MQRC_Q_MGR_NOT_AVAILABLE: true,
		mq.MQRC_HOST_NOT_AVAILABLE:  true,
		mq.MQRC_CHANNEL_NOT_AVAILABLE: true,
	}

	configurationReasons = map[int32]bool{
		mq.MQRC_UNKNOWN_OBJECT_NAME:    true,
		mq.MQRC_NOT_AUTHORIZED:         true,
		mq.MQRC_Q_TYPE_ERROR:           true,
		mq.MQRC_UNKNOWN_REMOTE_Q_MGR:   true,
		mq.MQRC_UNKNOWN_CHANNEL_NAME:   true,
		mq.MQRC_SSL_CONFIG_ERROR:       true,
	}

	shutdownReasons = map[int32]bool{
		mq.MQRC_Q_MGR_QUIESCING:        true,
		mq.MQRC_Q_MGR_STOPPING:         true,
		mq.MQRC_CONNECTION_QUIESCING:   true,
	}
)

// classify maps a raw MQ error into the bridge.Kind taxonomy of spec.md §7.
// A nil err yields nil. An error without an *mq.MQReturn, or with a reason
// code in none of the sets above, is treated as KindPermanent — the
// "conservative delay, reconnect if uncertain" rule.
func classify(err error) *bridge.ClassifiedError {
	if err == nil {
		return nil
	}

	var mqret *mq.MQReturn
	if !errors.As(err, &mqret) {
		return bridge.Classify(bridge.KindPermanent, err)
	}

	reason := mqret.MQRC
	switch {
	case reason == mq.MQRC_NO_MSG_AVAILABLE:
		return bridge.Classify(bridge.KindNoMessage, err)
	case shutdownReasons[reason]:
		return bridge.Classify(bridge.KindShutdown, err)
	case connectionReasons[reason]:
		return bridge.Classify(bridge.KindConnection, err)
	case configurationReasons[reason]:
		return bridge.Classify(bridge.KindConfiguration, err)
	case transientReasons[reason]:
		return bridge.Classify(bridge.KindTransient, err)
	default:
		return bridge.Classify(bridge.KindPermanent, err)
	}
}
