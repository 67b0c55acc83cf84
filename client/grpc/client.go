package grpcclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ark-network/ark-sdk/client"
	arkv1 "github.com/ark-network/ark/api-spec/protobuf/gen/ark/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

type grpcClient struct {
	conn *grpc.ClientConn
	svc  arkv1.ArkServiceClient
}

func NewClient(serverUrl string) (client.TransportClient, error) {
	if len(serverUrl) <= 0 {
		return nil, fmt.Errorf("missing server url")
	}

	creds := insecure.NewCredentials()
	port := 80
	if strings.HasPrefix(serverUrl, "https://") {
		serverUrl = strings.TrimPrefix(serverUrl, "https://")
		creds = credentials.NewTLS(nil)
		port = 443
	}
	serverUrl = strings.TrimPrefix(serverUrl, "http://")
	if !strings.Contains(serverUrl, ":") {
		serverUrl = fmt.Sprintf("%s:%d", serverUrl, port)
	}
	conn, err := grpc.NewClient(serverUrl, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, err
	}

	svc := arkv1.NewArkServiceClient(conn)
	return &grpcClient{conn, svc}, nil
}

func (a *grpcClient) Close() {
	//nolint:all
	a.conn.Close()
}

func (a *grpcClient) GetInfo(ctx context.Context) (*client.Info, error) {
	req := &arkv1.GetInfoRequest{}
	resp, err := a.svc.GetInfo(ctx, req)
	if err != nil {
		return nil, err
	}
	return &client.Info{
		Pubkey:              resp.GetPubkey(),
		RoundLifetime:       resp.GetRoundLifetime(),
		UnilateralExitDelay: resp.GetUnilateralExitDelay(),
		RoundInterval:       resp.GetRoundInterval(),
		Network:             resp.GetNetwork(),
		// the coordinator advertises its dust floor as the min relay fee
		Dust: uint64(resp.GetMinRelayFee()),
	}, nil
}

func (a *grpcClient) ListVtxos(
	ctx context.Context, addr string,
) ([]client.Vtxo, []client.Vtxo, error) {
	resp, err := a.svc.ListVtxos(ctx, &arkv1.ListVtxosRequest{Address: addr})
	if err != nil {
		return nil, nil, err
	}
	return vtxos(resp.GetSpendableVtxos()).toVtxos(),
		vtxos(resp.GetSpentVtxos()).toVtxos(), nil
}

func (a *grpcClient) GetRound(
	ctx context.Context, txid string,
) (*client.Round, error) {
	req := &arkv1.GetRoundRequest{Txid: txid}
	resp, err := a.svc.GetRound(ctx, req)
	if err != nil {
		return nil, err
	}
	round := resp.GetRound()
	startedAt := time.Unix(round.GetStart(), 0)
	var endedAt *time.Time
	if round.GetEnd() > 0 {
		t := time.Unix(round.GetEnd(), 0)
		endedAt = &t
	}
	return &client.Round{
		ID:        round.GetId(),
		StartedAt: &startedAt,
		EndedAt:   endedAt,
		Tx:        round.GetPoolTx(),
		Stage:     client.RoundStage(int(round.GetStage())),
	}, nil
}
