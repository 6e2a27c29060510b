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

// Package docgen renders Doxygen comment blocks for C++ declarations.
//
// The layout is driven entirely by Config, which is loadable from YAML.
// With DefaultConfig a declaration such as
//
//	int add(int a, int b);
//
// renders as
//
//	/**
//	 * @brief
//	 *
//	 * @param a
//	 * @param b
//	 * @return
//	 */
//
// Templates may use these placeholders:
//
//	{name}   function name (brief and return templates)
//	{param}  parameter name (param template)
//	{index}  1-based parameter position (param template, placeholder)
//	{type}   parameter declarator without its name and default value
//	{return} return type (return template)
package docgen
