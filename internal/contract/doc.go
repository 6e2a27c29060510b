// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package contract provides input limits shared by the cdoc CLI and the
// HTTP API.
//
// # Declaration Limits
//
// Declarations larger than the limit are rejected before extraction:
//
//	result := contract.ValidateDeclaration(text)
//	if !result.OK {
//	    return errors.NewInputError("Invalid declaration", result.Message, "")
//	}
//
// # Configuration via Environment
//
// The limit can be adjusted via CDOC_MAX_DECL_BYTES:
//
//	export CDOC_MAX_DECL_BYTES=131072  # 128 KiB
//
// If the variable is not set or invalid, DefaultMaxDeclarationBytes (64 KiB)
// is used.
package contract
