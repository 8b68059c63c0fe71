package contract

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	NameERC20             = "ERC20"
	NameStableToken       = "StableToken"
	NameLiquidityManager  = "LiquidityManager"
	NameStablecoinFactory = "StablecoinFactory"
)

const erc20MethodsJSON = `
	{"inputs":[],"name":"name","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"symbol","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"totalSupply","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"address","name":"account","type":"address"}],"name":"balanceOf","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}`

const erc20ABIJSON = `[` + erc20MethodsJSON + `]`

const stableTokenABIJSON = `[` + erc20MethodsJSON + `,
	{"inputs":[],"name":"getUSDTBalance","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

const liquidityManagerABIJSON = `[
	{"inputs":[{"internalType":"address","name":"tokenA","type":"address"},{"internalType":"address","name":"tokenB","type":"address"},{"internalType":"uint256","name":"networkId","type":"uint256"}],"name":"createPool","outputs":[{"internalType":"bytes32","name":"poolId","type":"bytes32"}],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"internalType":"bytes32","name":"poolId","type":"bytes32"}],"name":"getPoolInfo","outputs":[{"components":[
		{"internalType":"address","name":"tokenA","type":"address"},
		{"internalType":"address","name":"tokenB","type":"address"},
		{"internalType":"address","name":"pairAddress","type":"address"},
		{"internalType":"uint256","name":"liquidityAmount","type":"uint256"},
		{"internalType":"bool","name":"isActive","type":"bool"},
		{"internalType":"uint256","name":"createdAt","type":"uint256"},
		{"internalType":"uint256","name":"networkId","type":"uint256"}
	],"internalType":"struct LiquidityManager.PoolInfo","name":"","type":"tuple"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"getAllPoolIds","outputs":[{"internalType":"bytes32[]","name":"","type":"bytes32[]"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"address","name":"token","type":"address"}],"name":"getTokenPrice","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

const stablecoinFactoryABIJSON = `[
	{"inputs":[{"internalType":"string","name":"name","type":"string"},{"internalType":"string","name":"symbol","type":"string"},{"internalType":"address","name":"collateralToken","type":"address"},{"internalType":"uint256","name":"initialSupply","type":"uint256"},{"internalType":"uint256","name":"collateralRatio","type":"uint256"}],"name":"createStablecoin","outputs":[{"internalType":"bytes32","name":"stablecoinId","type":"bytes32"}],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[],"name":"getAllStablecoinIds","outputs":[{"internalType":"bytes32[]","name":"","type":"bytes32[]"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"bytes32","name":"stablecoinId","type":"bytes32"}],"name":"getStablecoinInfo","outputs":[{"components":[
		{"internalType":"bytes32","name":"stablecoinId","type":"bytes32"},
		{"internalType":"address","name":"stablecoinAddress","type":"address"},
		{"internalType":"address","name":"liquidityManagerAddress","type":"address"},
		{"internalType":"bytes32","name":"poolId","type":"bytes32"},
		{"components":[
			{"internalType":"string","name":"name","type":"string"},
			{"internalType":"string","name":"symbol","type":"string"},
			{"internalType":"address","name":"collateralToken","type":"address"},
			{"internalType":"uint256","name":"initialSupply","type":"uint256"},
			{"internalType":"uint256","name":"collateralRatio","type":"uint256"},
			{"internalType":"bool","name":"isActive","type":"bool"},
			{"internalType":"uint256","name":"createdAt","type":"uint256"}
		],"internalType":"struct StablecoinFactory.StablecoinConfig","name":"config","type":"tuple"}
	],"internalType":"struct StablecoinFactory.StablecoinInfo","name":"","type":"tuple"}],"stateMutability":"view","type":"function"}
]`

// Descriptor is a named, parsed ABI. Descriptors are immutable and shared.
type Descriptor struct {
	Name string
	ABI  abi.ABI
}

var (
	descriptors     map[string]*Descriptor
	descriptorsOnce sync.Once
	descriptorsErr  error
)

// LoadDescriptors parses every ABI in the table once.
func LoadDescriptors() error {
	descriptorsOnce.Do(func() {
		sources := map[string]string{
			NameERC20:             erc20ABIJSON,
			NameStableToken:       stableTokenABIJSON,
			NameLiquidityManager:  liquidityManagerABIJSON,
			NameStablecoinFactory: stablecoinFactoryABIJSON,
		}
		parsed := make(map[string]*Descriptor, len(sources))
		for name, src := range sources {
			a, err := abi.JSON(strings.NewReader(src))
			if err != nil {
				descriptorsErr = fmt.Errorf("parse %s abi: %w", name, err)
				return
			}
			parsed[name] = &Descriptor{Name: name, ABI: a}
		}
		descriptors = parsed
	})
	return descriptorsErr
}

// MustLoadDescriptors is LoadDescriptors for process start, where a broken table is fatal.
func MustLoadDescriptors() {
	if err := LoadDescriptors(); err != nil {
		panic(err)
	}
}

// Lookup returns the descriptor with the given name.
func Lookup(name string) (*Descriptor, bool) {
	if err := LoadDescriptors(); err != nil {
		return nil, false
	}
	d, ok := descriptors[name]
	return d, ok
}

func mustLookup(name string) *Descriptor {
	MustLoadDescriptors()
	return descriptors[name]
}

func ERC20() *Descriptor             { return mustLookup(NameERC20) }
func StableToken() *Descriptor       { return mustLookup(NameStableToken) }
func LiquidityManager() *Descriptor  { return mustLookup(NameLiquidityManager) }
func StablecoinFactory() *Descriptor { return mustLookup(NameStablecoinFactory) }
