package descriptor_test

import (
	"encoding/hex"
	"testing"

	"github.com/ark-network/ark-sdk/common"
	"github.com/ark-network/ark-sdk/common/descriptor"
	"github.com/stretchr/testify/require"
)

const (
	userKeyHex   = "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	serverKeyHex = "973079a0091c9b16abd1f8c508320b07f0d50144d09ccd792ce9c915dac60465"
)

func TestParseTaprootDescriptor(t *testing.T) {
	tests := []struct {
		name     string
		desc     string
		expected descriptor.TaprootDescriptor
		wantErr  bool
	}{
		{
			name: "basic taproot",
			desc: "tr(79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798,{pk(81e0351fc94c3ba05f8d68354ff44711b02223f2b32fb7f3ef3a99a90af7952c)})",
			expected: descriptor.TaprootDescriptor{
				InternalKey: descriptor.Key{Hex: "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"},
				ScriptTree: []descriptor.Expression{
					&descriptor.PK{
						Key: descriptor.XOnlyKey{
							descriptor.Key{
								Hex: "81e0351fc94c3ba05f8d68354ff44711b02223f2b32fb7f3ef3a99a90af7952c",
							},
						},
					},
				},
			},
		},
		{
			name: "boarding",
			desc: "tr(0250929b74c1a04954b78b4b6035e97a5e078a5a0f28ec96d547bfee9ace803ac0,{ and(pk(973079a0091c9b16abd1f8c508320b07f0d50144d09ccd792ce9c915dac60465), pk(79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798)), and(older(604672), pk(79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798)) })",
			expected: descriptor.TaprootDescriptor{
				InternalKey: descriptor.Key{Hex: "50929b74c1a04954b78b4b6035e97a5e078a5a0f28ec96d547bfee9ace803ac0"},
				ScriptTree: []descriptor.Expression{
					&descriptor.And{
						First: &descriptor.PK{
							Key: descriptor.XOnlyKey{descriptor.Key{Hex: serverKeyHex}},
						},
						Second: &descriptor.PK{
							Key: descriptor.XOnlyKey{descriptor.Key{Hex: userKeyHex}},
						},
					},
					&descriptor.And{
						First: &descriptor.Older{
							Locktime: common.RelativeLocktime{Type: common.LocktimeTypeSecond, Value: 604672},
						},
						Second: &descriptor.PK{
							Key: descriptor.XOnlyKey{descriptor.Key{Hex: userKeyHex}},
						},
					},
				},
			},
		},
		{
			name: "valid empty script tree",
			desc: "tr(79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798,{})",
			expected: descriptor.TaprootDescriptor{
				InternalKey: descriptor.Key{Hex: "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"},
				ScriptTree:  []descriptor.Expression{},
			},
		},
		{
			name:    "invalid key",
			desc:    "tr(79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f8179G,{pk(81e0351fc94c3ba05f8d68354ff44711b02223f2b32fb7f3ef3a99a90af7952c)})",
			wantErr: true,
		},
		{
			name:    "missing script tree",
			desc:    "tr(79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798)",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := descriptor.ParseTaprootDescriptor(tt.desc)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			require.Equal(t, tt.expected, *got)

			// compiling back must parse to the same tree
			again, err := descriptor.ParseTaprootDescriptor(
				descriptor.CompileDescriptor(*got),
			)
			require.NoError(t, err)
			require.Equal(t, *got, *again)
		})
	}
}

func TestParseBoardingDescriptor(t *testing.T) {
	desc, err := descriptor.ParseTaprootDescriptor(
		"tr(0250929b74c1a04954b78b4b6035e97a5e078a5a0f28ec96d547bfee9ace803ac0,{ and(pk(973079a0091c9b16abd1f8c508320b07f0d50144d09ccd792ce9c915dac60465), pk(79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798)), and(older(604672), pk(79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798)) })",
	)
	require.NoError(t, err)

	user, timeout, err := descriptor.ParseBoardingDescriptor(*desc)
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotNil(t, timeout)
	require.Equal(t, userKeyHex, hex.EncodeToString(user.SerializeCompressed()[1:]))
	require.Equal(t, common.LocktimeTypeSecond, timeout.Type)
	require.Equal(t, uint32(604672), timeout.Value)
}

func TestParsePk(t *testing.T) {
	tests := []struct {
		policy         string
		expectedScript string
		verify         bool
	}{
		{
			policy:         "pk(81e0351fc94c3ba05f8d68354ff44711b02223f2b32fb7f3ef3a99a90af7952c)",
			expectedScript: "2081e0351fc94c3ba05f8d68354ff44711b02223f2b32fb7f3ef3a99a90af7952cac",
			verify:         false,
		},
		{
			policy:         "pk(81e0351fc94c3ba05f8d68354ff44711b02223f2b32fb7f3ef3a99a90af7952c)",
			expectedScript: "2081e0351fc94c3ba05f8d68354ff44711b02223f2b32fb7f3ef3a99a90af7952cad",
			verify:         true,
		},
	}

	for _, test := range tests {
		var parsed descriptor.PK
		err := parsed.Parse(test.policy)
		require.NoError(t, err)

		script, err := parsed.Script(test.verify)
		require.NoError(t, err)
		require.Equal(t, test.expectedScript, script)
	}
}

func TestParseOlder(t *testing.T) {
	tests := []struct {
		policy         string
		expectedScript string
		expected       common.RelativeLocktime
	}{
		{
			policy:         "older(512)",
			expectedScript: "03010040b275",
			expected:       common.RelativeLocktime{Type: common.LocktimeTypeSecond, Value: 512},
		},
		{
			policy:         "older(1024)",
			expectedScript: "03020040b275",
			expected:       common.RelativeLocktime{Type: common.LocktimeTypeSecond, Value: 1024},
		},
		{
			policy:         "older(144)",
			expectedScript: "029000b275",
			expected:       common.RelativeLocktime{Type: common.LocktimeTypeBlock, Value: 144},
		},
	}

	for _, test := range tests {
		var parsed descriptor.Older
		err := parsed.Parse(test.policy)
		require.NoError(t, err)
		require.Equal(t, test.expected, parsed.Locktime)

		script, err := parsed.Script(false)
		require.NoError(t, err)
		require.Equal(t, test.expectedScript, script)
	}
}
