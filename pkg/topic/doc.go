// Package topic creates consensus topics and submits messages to them. A
// topic's submit key may be a threshold policy, in which case each message
// needs the signatures of M of its N keys.
package topic
