// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tf

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Topic names on which tf2 publishes transforms.
const (
	TopicTF       = "/tf"
	TopicTFStatic = "/tf_static"
)

// IsTransformTopic reports whether topic carries tf2 TFMessage payloads.
func IsTransformTopic(topic string) bool {
	return topic == TopicTF || topic == TopicTFStatic
}

// tfMessage mirrors the JSON shape of tf2_msgs/TFMessage as delivered
// by the bridge.
type tfMessage struct {
	Transforms []struct {
		Header struct {
			FrameID string `json:"frame_id"`
		} `json:"header"`
		ChildFrameID string `json:"child_frame_id"`
		Transform    struct {
			Translation Vec3       `json:"translation"`
			Rotation    Quaternion `json:"rotation"`
		} `json:"transform"`
	} `json:"transforms"`
}

// ParseTFMessage converts a TFMessage JSON payload into transform
// records stamped with observedAt. Leading slashes on frame ids are
// stripped (tf2 treats "/map" and "map" as the same frame). Entries that
// fail validation are skipped and reported together in the returned
// error; the valid records are still returned.
func ParseTFMessage(payload []byte, isStatic bool, observedAt time.Time) ([]TransformRecord, error) {
	var message tfMessage
	if err := json.Unmarshal(payload, &message); err != nil {
		return nil, fmt.Errorf("parsing TFMessage: %w", err)
	}

	records := make([]TransformRecord, 0, len(message.Transforms))
	var skipped []string
	for _, entry := range message.Transforms {
		record := TransformRecord{
			Parent:      normalizeFrame(entry.Header.FrameID),
			Child:       normalizeFrame(entry.ChildFrameID),
			Translation: entry.Transform.Translation,
			Rotation:    entry.Transform.Rotation,
			IsStatic:    isStatic,
			ObservedAt:  observedAt,
		}
		if err := record.Validate(); err != nil {
			skipped = append(skipped, err.Error())
			continue
		}
		records = append(records, record)
	}
	if len(skipped) > 0 {
		return records, fmt.Errorf("skipped %d invalid transforms: %s", len(skipped), strings.Join(skipped, "; "))
	}
	return records, nil
}

func normalizeFrame(frame string) FrameID {
	return FrameID(strings.TrimPrefix(frame, "/"))
}
