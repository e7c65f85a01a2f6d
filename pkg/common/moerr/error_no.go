// Copyright 2021 - 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package moerr

// MySQL error numbers reported to clients.
const (
	ER_BAD_DB_ERROR                   uint16 = 1049
	ER_BAD_FIELD_ERROR                uint16 = 1054
	ER_PARSE_ERROR                    uint16 = 1064
	ER_NO_SUCH_TABLE                  uint16 = 1146
	ER_UNKNOWN_ERROR                  uint16 = 1105
	ER_TOO_BIG_FIELDLENGTH            uint16 = 1074
	ER_UDF_ALREADY_EXISTS             uint16 = 1125
	ER_QUERY_INTERRUPTED              uint16 = 1317
	ER_WRONG_VALUE_FOR_TYPE           uint16 = 1411
	ER_DATA_OUT_OF_RANGE              uint16 = 1690
	ER_INVALID_ARGUMENT_FOR_LOGARITHM uint16 = 3020
)
