// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

// Package cache provides a bounded, thread-safe LRU cache with per-entry TTL.
//
// The study content service uses it to avoid repeating a model call when the
// same text is submitted again within the TTL:
//
//	c := cache.New[*studio.Content](256, 30*time.Minute)
//	key := cache.Key("quiz", []byte(text))
//	if content, ok := c.Get(key); ok {
//	    return content
//	}
package cache
