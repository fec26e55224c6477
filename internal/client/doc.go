// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the icsctl runtime.
//
// [App] opens a ROP session for each job and drives the ROP sequence of an
// incremental download: Logon, OpenFolder, SyncConfigure, the upload of a
// previously saved state, the FastTransfer buffer loop and finally
// SyncGetTransferState. The change stream goes to a caller supplied writer
// while its atoms are counted for progress reports.
package client
