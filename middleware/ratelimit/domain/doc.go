// Package domain define contratos e tipos de domínio do rate limit adaptativo.
//
// Este pacote não depende de net/http nem de implementações concretas.
// Aqui vivem as políticas por (categoria, ação), os sinais de identidade do
// request, as decisões (admitir/negar + metadados de cota) e os contratos dos
// componentes com estado (janela deslizante, registro de bloqueios, rastreio
// de login, detector de atividade suspeita).
//
// A intenção é permitir testes de unidade puros e desacoplar regras de
// negócio de detalhes de infraestrutura.
package domain
