// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package supervisor

import "github.com/google/uuid"

// IssueToken mints a random session token for one backend launch.
func IssueToken() string {
	return uuid.NewString()
}
