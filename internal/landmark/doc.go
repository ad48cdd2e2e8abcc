// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

/*
Package landmark runs face-mesh inference in external worker processes and
exposes them as a focus.Detector.

The model lives in a separate process (by default a Python script using
MediaPipe Face Mesh) because the inference runtime is not available to Go.
The Pool starts a fixed number of workers, hands each Detect call one worker
exclusively, and replaces workers that crash, hang, or fall out of protocol.

# Wire protocol

Requests go to the worker's stdin; responses come back on file descriptor 3
so that library chatter on stdout or stderr cannot corrupt the stream. All
integers are big endian.

Request:

	[u32 length][u32 width][u32 height][width*height*3 bytes RGB]

Response:

	[u32 length][u8 status][body]

	status 0 (ok):    [u32 n][n x (f32 x, f32 y, f32 z)]   n == 0: no face
	status 1 (error): [u32 msgLen][msg]
	status 2 (ready): [u32 protocol version]               sent once at startup

Workers receive their model options as flags:

	--max-faces=1 --refine-landmarks
	--min-detection-confidence=0.5 --min-tracking-confidence=0.5
*/
package landmark
